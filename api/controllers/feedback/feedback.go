package feedback

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cabanadebrincar/cabana-backend/api/responses"
	"github.com/cabanadebrincar/cabana-backend/api/validators"
	internalfeedback "github.com/cabanadebrincar/cabana-backend/internal/feedback"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

const (
	photoField      = "fotos"
	formOverhead    = 1 << 20
	defaultMaxFiles = 6
	maxNameRunes    = 120
	maxTextRunes    = 2000
)

// UploadLimits bounds the multipart review form.
type UploadLimits struct {
	MaxPhotos     int
	MaxPhotoBytes int64
}

func (l UploadLimits) maxFiles() int {
	if l.MaxPhotos <= 0 {
		return defaultMaxFiles
	}
	return l.MaxPhotos
}

func (l UploadLimits) maxBody() int64 {
	return int64(l.maxFiles())*l.MaxPhotoBytes + formOverhead
}

// IssueToken mints a single-use review link for an order.
func IssueToken(svc internalfeedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		link, err := svc.IssueToken(r.Context(), orderID)
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, link)
	}
}

func Lookup(svc internalfeedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := svc.Lookup(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, target)
	}
}

// Submit accepts the multipart review form and consumes the token.
func Submit(svc internalfeedback.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, closeFiles, err := validators.ParseMultipart(w, r, photoField, limits.maxFiles(), limits.maxBody())
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		defer closeFiles()

		input := internalfeedback.SubmitInput{Nome: validators.FormValue(r, "nome", maxNameRunes)}
		if texto := validators.FormValue(r, "texto", maxTextRunes); texto != nil {
			input.Texto = *texto
		}
		if nota := validators.FormValue(r, "nota", 2); nota != nil {
			value, convErr := strconv.Atoi(*nota)
			if convErr != nil {
				responses.WriteFlatError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nota deve ser um número entre 1 e 5"))
				return
			}
			input.Nota = value
		}
		for _, f := range files {
			input.Photos = append(input.Photos, internalfeedback.Photo{
				Filename: f.Filename,
				Size:     f.Size,
				Body:     f.File,
			})
		}

		testimonial, err := svc.Submit(r.Context(), chi.URLParam(r, "token"), input)
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "id": testimonial.ID})
	}
}

// ListPublic returns approved testimonials for the site.
func ListPublic(svc internalfeedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPublic(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ListAll(svc internalfeedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Moderate(svc internalfeedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input internalfeedback.ModerateInput
		if err := validators.DecodeJSONBody(w, r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		testimonial, err := svc.Moderate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, testimonial)
	}
}

func Delete(svc internalfeedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}
