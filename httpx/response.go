package httpx

import (
	"bytes"
	"net/http"
)

// ResponseBuffer records a response in memory, so a handler can be invoked
// and its outcome inspected before anything reaches the client.
type ResponseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() *ResponseBuffer {
	return &ResponseBuffer{header: http.Header{}}
}

func (b *ResponseBuffer) Header() http.Header { return b.header }
func (b *ResponseBuffer) Body() []byte        { return b.body.Bytes() }

// Status is the recorded status code, 200 if the handler wrote a body
// without setting one.
func (b *ResponseBuffer) Status() int {
	if b.status == 0 && b.body.Len() > 0 {
		return http.StatusOK
	}
	return b.status
}

func (b *ResponseBuffer) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *ResponseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

// Flush copies the recorded response to w.
func (b *ResponseBuffer) Flush(w http.ResponseWriter) error {
	header := w.Header()
	for key, values := range b.header {
		header[key] = values
	}
	if status := b.Status(); status != 0 {
		w.WriteHeader(status)
	}
	if b.body.Len() == 0 {
		return nil
	}
	_, err := w.Write(b.body.Bytes())
	return err
}
