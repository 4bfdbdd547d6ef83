package export

import (
	"bytes"
	"net/http"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
)

// CSVWriter буферизует выгрузку. Клиент получает файл только после Flush,
// до этого ответ еще можно заменить ошибкой через Fail.
type CSVWriter struct {
	w        http.ResponseWriter
	filename string
	buf      bytes.Buffer
}

// NewCSVWriter создает CSVWriter для ответа w.
func NewCSVWriter(w http.ResponseWriter, filename string) *CSVWriter {
	return &CSVWriter{w: w, filename: filename}
}

// Write реализует io.Writer.
func (c *CSVWriter) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

// Flush отправляет файл клиенту.
func (c *CSVWriter) Flush() error {
	c.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	c.w.Header().Set("Content-Disposition", `attachment; filename="`+c.filename+`"`)
	c.w.WriteHeader(http.StatusOK)
	_, err := c.buf.WriteTo(c.w)
	return err
}

// Fail отбрасывает накопленное и отвечает ошибкой 500.
func (c *CSVWriter) Fail(r *http.Request) {
	c.buf.Reset()
	response.WriteError(c.w, r, http.StatusInternalServerError, response.MsgInternal)
}
