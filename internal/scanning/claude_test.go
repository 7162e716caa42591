package scanning

import (
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Claude", func() {
	var (
		upstream *ghttp.Server
		scanner  *Claude
	)

	BeforeEach(func() {
		upstream = ghttp.NewServer()

		var err error
		scanner, err = NewClaude("test-key", "")
		Expect(err).NotTo(HaveOccurred())
		scanner.baseURL = upstream.URL()
	})

	AfterEach(func() {
		upstream.Close()
	})

	Describe("NewClaude", func() {
		When("the API key is empty", func() {
			It("should return a ConfigError", func() {
				_, err := NewClaude("", "")
				Expect(err).To(HaveOccurred())

				var cfgErr *ConfigError
				Expect(errors.As(err, &cfgErr)).To(BeTrue())
			})
		})

		When("no model is given", func() {
			It("should use the default model", func() {
				Expect(scanner.Model()).To(Equal(DefaultClaudeModel))
			})
		})
	})

	Describe("ScanReceipt", func() {
		When("the API returns a valid reply", func() {
			BeforeEach(func() {
				upstream.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest("POST", "/v1/messages"),
					ghttp.VerifyHeaderKV("x-api-key", "test-key"),
					ghttp.VerifyHeaderKV("anthropic-version", "2023-06-01"),
					ghttp.VerifyContentType("application/json"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"content": []map[string]string{
							{"text": "```json\n{\"vendor\":\"Walgreens\",\"amount\":24.99,\"date\":\"11/07/2025\",\"items\":[\"Band-Aids\"],\"raw_text\":\"WALGREENS\"}\n```"},
						},
					}),
				))
			})

			It("should return the parsed record", func() {
				record, err := scanner.ScanReceipt([]byte("fake-image-bytes"), "image/jpeg")
				Expect(err).NotTo(HaveOccurred())
				Expect(record.Vendor).To(Equal("Walgreens"))
				Expect(record.Amount).To(Equal(24.99))
				Expect(record.Date).To(Equal("11/07/2025"))
				Expect(record.Items).To(Equal([]string{"Band-Aids"}))
			})
		})

		When("the API returns a non-2xx status", func() {
			BeforeEach(func() {
				upstream.AppendHandlers(ghttp.RespondWith(http.StatusTooManyRequests, "rate limited"))
			})

			It("should return an UpstreamError carrying the original status", func() {
				_, err := scanner.ScanReceipt([]byte("fake-image-bytes"), "image/jpeg")
				Expect(err).To(HaveOccurred())

				var upErr *UpstreamError
				Expect(errors.As(err, &upErr)).To(BeTrue())
				Expect(upErr.StatusCode).To(Equal(http.StatusTooManyRequests))
				Expect(upErr.Body).To(ContainSubstring("rate limited"))
			})

			It("should not retry the request", func() {
				scanner.ScanReceipt([]byte("fake-image-bytes"), "image/jpeg")
				Expect(upstream.ReceivedRequests()).To(HaveLen(1))
			})
		})

		When("the API returns an empty content list", func() {
			BeforeEach(func() {
				upstream.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"content": []map[string]string{},
				}))
			})

			It("should return an error", func() {
				_, err := scanner.ScanReceipt([]byte("fake-image-bytes"), "image/jpeg")
				Expect(err).To(MatchError(ContainSubstring("no content")))
			})
		})
	})
})
