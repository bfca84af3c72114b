package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStrings(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantTitle   *string
		wantContent *string
		wantErrs    Errors
	}{
		{
			name:        "strings are taken as sent",
			body:        `{"title":"  hi ","content":""}`,
			wantTitle:   strPtr("  hi "),
			wantContent: strPtr(""),
			wantErrs:    Errors{},
		},
		{
			name:     "absent keys stay nil",
			body:     `{"other":1}`,
			wantErrs: Errors{},
		},
		{
			name:     "numbers and objects are field errors",
			body:     `{"title":5,"content":{"a":"b"}}`,
			wantErrs: Errors{"title": {MsgNotString}, "content": {MsgNotString}},
		},
		{
			name:        "null is its own field error",
			body:        `{"title":null,"content":"x"}`,
			wantContent: strPtr("x"),
			wantErrs:    Errors{"title": {MsgNull}},
		},
		{
			name:     "literal null body has no fields",
			body:     `null`,
			wantErrs: Errors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var title, content *string
			errs, err := DecodeStrings([]byte(tt.body), map[string]**string{
				"title":   &title,
				"content": &content,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantErrs, errs)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestDecodeStrings_NotAnObject(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"title"`, `42`} {
		var title *string
		_, err := DecodeStrings([]byte(body), map[string]**string{"title": &title})
		assert.Error(t, err, body)
	}
}

func TestRequire_SkipsFieldsAlreadyReported(t *testing.T) {
	errs := Errors{"title": {MsgNotString}}

	errs.Require("title", nil)

	assert.Equal(t, []string{MsgNotString}, errs["title"])
}

func TestClone(t *testing.T) {
	orig := Errors{"text": {MsgNull}}

	c := orig.Clone()
	c.Add("text", "more")

	assert.Equal(t, []string{MsgNull}, orig["text"])
	assert.Len(t, c["text"], 2)
	assert.NotNil(t, Errors(nil).Clone())
}

func strPtr(s string) *string { return &s }
