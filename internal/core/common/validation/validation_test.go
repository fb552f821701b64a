package validation_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

func fields(err *errors.AppError) []string {
	details := err.Details.(errors.ValidationErrors)
	out := make([]string, 0, len(details.Errors))
	for _, e := range details.Errors {
		out = append(out, e.Field)
	}
	return out
}

var _ = Describe("ValidationBuilder", func() {
	It("collects the first failure of every field", func() {
		v := validation.NewValidator()
		v.Field("full_name", "").Required().MinLength(2)
		v.Field("email", "not-an-email").Required().Email()
		v.Field("role_requested", "CEO").OneOf(errors.ErrCodeInvalidRole, "HR", "MD")

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Type).To(Equal(errors.ErrorTypeValidation))
		Expect(fields(err)).To(Equal([]string{"full_name", "email", "role_requested"}))
	})

	It("passes valid input", func() {
		v := validation.NewValidator()
		v.Field("email", "dana@example.com").Required().Email()
		v.Field("start_date", "2025-01-31").Date()
		Expect(v.Validate()).To(BeNil())
	})

	DescribeTable("ValidateDateRange",
		func(start, end string, ok bool) {
			err := validation.ValidateDateRange(start, end)
			if ok {
				Expect(err).To(BeNil())
			} else {
				Expect(err).NotTo(BeNil())
			}
		},
		Entry("same day", "2025-03-01", "2025-03-01", true),
		Entry("multi day", "2025-03-01", "2025-03-05", true),
		Entry("end before start", "2025-03-05", "2025-03-01", false),
		Entry("bad format", "03/01/2025", "2025-03-05", false),
		Entry("missing end", "2025-03-01", "", false),
	)
})
