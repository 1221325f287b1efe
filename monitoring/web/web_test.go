package web_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mmiosim/monitoring/web"
)

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

var _ = Describe("Dashboard", func() {
	Context("with the embedded page", func() {
		BeforeEach(func() {
			GinkgoT().Setenv(web.EnvAssetDir, "")
		})

		It("should serve the dashboard at the root", func() {
			rec := get(web.Handler(), "/")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
			Expect(rec.Body.String()).To(ContainSubstring("<title>mmiosim monitor</title>"))
			Expect(rec.Body.String()).To(ContainSubstring("/api/dispatch/"))
			Expect(rec.Header().Get("Cache-Control")).To(BeEmpty())
		})

		It("should not find files it does not ship", func() {
			rec := get(web.Handler(), "/app.js")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("with an asset directory", func() {
		It("should serve the edited page uncached", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "index.html"),
				[]byte("<!DOCTYPE html><p>draft</p>"), 0o600)).To(Succeed())
			GinkgoT().Setenv(web.EnvAssetDir, dir)

			rec := get(web.Handler(), "/")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("draft"))
			Expect(rec.Header().Get("Cache-Control")).To(Equal("no-store"))
		})
	})
})
