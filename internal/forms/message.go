package forms

import (
	"net/url"
	"strings"
)

type MessageForm struct {
	Body   string
	Errors Errors
}

func BindMessageForm(values url.Values) *MessageForm {
	return &MessageForm{
		Body:   strings.TrimSpace(values.Get("body")),
		Errors: Errors{},
	}
}

func (f *MessageForm) Valid() bool {
	f.Errors = Errors{}
	required(f.Errors, "body", f.Body)
	return !f.Errors.Any()
}
