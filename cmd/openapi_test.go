package cmd

import (
	"context"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents every mounted API route", func() {
		app := newSQLiteApplication()
		defer app.Shutdown(context.Background())

		var missing []string
		err := chi.Walk(app.Router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			path, ok := strings.CutPrefix(route, "/api/v1")
			if !ok {
				return nil
			}
			if len(path) > 1 {
				path = strings.TrimSuffix(path, "/")
			}
			item := doc.Paths.Value(path)
			if item == nil || item.GetOperation(method) == nil {
				missing = append(missing, method+" "+path)
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})

	It("requires a bearer token everywhere except the public auth and health routes", func() {
		public := map[string]bool{"/auth/login": true, "/auth/signup": true, "/auth/logout": true, "/health": true, "/ping": true}
		for path, item := range doc.Paths.Map() {
			for method, op := range item.Operations() {
				if public[path] {
					continue
				}
				security := op.Security
				if security == nil {
					security = &doc.Security
				}
				Expect(*security).NotTo(BeEmpty(), method+" "+path)
			}
		}
	})
})
