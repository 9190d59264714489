package validators

import (
	"errors"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
)

const multipartMemory = 8 << 20

// MultipartFile is an opened upload part. Callers must Close it.
type MultipartFile struct {
	Filename string
	Size     int64
	File     multipart.File
}

// ParseMultipart parses a multipart form bounded to maxBody bytes and opens at most
// maxFiles parts of field. The returned close func releases every opened part.
func ParseMultipart(w http.ResponseWriter, r *http.Request, field string, maxFiles int, maxBody int64) ([]MultipartFile, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, pkgerrors.New(pkgerrors.CodeValidation, "envio excede o tamanho máximo")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, pkgerrors.New(pkgerrors.CodeValidation, "formulário multipart esperado")
		}
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "formulário inválido")
	}

	headers := r.MultipartForm.File[field]
	if len(headers) > maxFiles {
		return nil, noop, pkgerrors.Newf(pkgerrors.CodeValidation, "máximo de %d arquivos em %s", maxFiles, field)
	}

	files := make([]MultipartFile, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.File.Close()
		}
		_ = r.MultipartForm.RemoveAll()
	}
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arquivo inválido")
		}
		files = append(files, MultipartFile{Filename: h.Filename, Size: h.Size, File: f})
	}
	return files, closeAll, nil
}

// FormValue returns the cleaned form value cut to maxRunes, or nil when it is
// absent or blank.
func FormValue(r *http.Request, key string, maxRunes int) *string {
	v := CleanText(r.FormValue(key), maxRunes)
	if v == "" {
		return nil
	}
	return &v
}
