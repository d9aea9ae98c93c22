package followdash

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

func TestRenderStatusWritesComponent(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	cmp := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>missing</p>")
		return err
	})
	if err := RenderStatus(c, http.StatusNotFound, cmp); err != nil {
		t.Fatalf("RenderStatus: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != echo.MIMETextHTMLCharsetUTF8 {
		t.Errorf("content type = %q", got)
	}
	if rec.Body.String() != "<p>missing</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRenderStatusFailureLeavesResponseUncommitted(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	boom := errors.New("template failed")
	cmp := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		io.WriteString(w, "<p>half")
		return boom
	})
	if err := Render(c, cmp); !errors.Is(err, boom) {
		t.Fatalf("Render error = %v, want %v", err, boom)
	}
	if c.Response().Committed {
		t.Error("response committed after a failed render")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("partial body written: %q", rec.Body.String())
	}
}
