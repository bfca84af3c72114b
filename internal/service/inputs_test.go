package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sakif/blog-api/internal/validation"
)

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var in T
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", body, err)
	}
	return in
}

func TestInputs_RejectNonObjects(t *testing.T) {
	var in PostInput
	if err := json.Unmarshal([]byte(`["title"]`), &in); err == nil {
		t.Error("Unmarshal() of an array succeeded, want error")
	}
}

func TestPostUpdate_WrongTypeIsFieldError(t *testing.T) {
	f := newFixture(t)
	post := f.mustPost(t, "alice", "before")

	_, err := f.postSvc.Update(context.Background(), "alice", post.ID, decode[PostInput](t, `{"title":5}`))
	fields := fieldErrors(t, err)

	want := map[string]string{
		"title":   validation.MsgNotString,
		"content": validation.MsgRequired,
	}
	for field, msg := range want {
		if got := fields[field]; len(got) != 1 || got[0] != msg {
			t.Errorf("fields[%s] = %v, want [%s]", field, got, msg)
		}
	}
	if f.posts.posts[0].Title != "before" {
		t.Error("rejected update changed the post")
	}
}

func TestPostPatch_NullIsFieldError(t *testing.T) {
	f := newFixture(t)
	post := f.mustPost(t, "alice", "before")

	_, err := f.postSvc.Patch(context.Background(), "alice", post.ID, decode[PostInput](t, `{"content":null}`))
	fields := fieldErrors(t, err)
	if got := fields["content"]; len(got) != 1 || got[0] != validation.MsgNull {
		t.Errorf("fields[content] = %v, want [%s]", got, validation.MsgNull)
	}
	if _, ok := fields["title"]; ok {
		t.Error("absent title should keep its stored value, not be reported")
	}
}

func TestCommentCreateOnPost_WrongTypeIsFieldError(t *testing.T) {
	f := newFixture(t)
	post := f.mustPost(t, "alice", "post")

	_, err := f.comSvc.CreateOnPost(context.Background(), "bob", post.ID, decode[CommentInput](t, `{"text":123}`))
	fields := fieldErrors(t, err)
	if got := fields["text"]; len(got) != 1 || got[0] != validation.MsgNotString {
		t.Errorf("fields[text] = %v, want [%s]", got, validation.MsgNotString)
	}
}

func TestRegister_WrongTypes(t *testing.T) {
	repo := &fakeUserRepo{}
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), decode[RegisterInput](t, `{"username":["alice"],"password":123456}`))
	fields := fieldErrors(t, err)
	for _, field := range []string{"username", "password"} {
		if got := fields[field]; len(got) != 1 || got[0] != validation.MsgNotString {
			t.Errorf("fields[%s] = %v, want [%s]", field, got, validation.MsgNotString)
		}
	}
	if len(repo.users) != 0 {
		t.Error("invalid registration stored a user")
	}
}

func TestDecodedInputIsReusable(t *testing.T) {
	f := newFixture(t)
	post := f.mustPost(t, "alice", "before")
	in := decode[PostInput](t, `{"title":5}`)

	for i := 0; i < 2; i++ {
		_, err := f.postSvc.Patch(context.Background(), "alice", post.ID, in)
		if got := fieldErrors(t, err)["title"]; len(got) != 1 {
			t.Fatalf("call %d: fields[title] = %v, want one message", i, got)
		}
	}
}
