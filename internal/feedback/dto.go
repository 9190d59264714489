package feedback

import (
	"io"
	"strings"
)

// Photo is one uploaded image attached to a testimonial submission.
type Photo struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// SubmitInput carries a customer's review.
type SubmitInput struct {
	Nome   *string
	Texto  string
	Nota   int
	Photos []Photo
}

// TokenLink is returned to the admin after issuing a review token.
type TokenLink struct {
	Token string `json:"token"`
	Link  string `json:"link"`
}

// Target identifies who a review link belongs to.
type Target struct {
	Nome string `json:"nome"`
}

// ModerateInput is a typed partial update applied by the admin.
type ModerateInput struct {
	Aprovado *bool   `json:"aprovado"`
	Texto    *string `json:"texto"`
}

func (in ModerateInput) updates() map[string]any {
	updates := map[string]any{}
	if in.Aprovado != nil {
		updates["aprovado"] = *in.Aprovado
	}
	if in.Texto != nil {
		updates["texto"] = strings.TrimSpace(*in.Texto)
	}
	return updates
}
