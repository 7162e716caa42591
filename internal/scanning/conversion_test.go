package scanning

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("resolveMIMEType", func() {
	When("the extension maps to a known type", func() {
		It("should win over a mismatched declared type", func() {
			Expect(resolveMIMEType("application/octet-stream", "receipt.png")).To(Equal("image/png"))
			Expect(resolveMIMEType("image/png", "receipt.jpg")).To(Equal("image/jpeg"))
			Expect(resolveMIMEType("text/plain", "receipt.jpeg")).To(Equal("image/jpeg"))
			Expect(resolveMIMEType("image/jpeg", "receipt.gif")).To(Equal("image/gif"))
			Expect(resolveMIMEType("image/jpeg", "receipt.webp")).To(Equal("image/webp"))
			Expect(resolveMIMEType("image/png", "receipt.pdf")).To(Equal("application/pdf"))
			Expect(resolveMIMEType("application/octet-stream", "IMG_0042.HEIC")).To(Equal("image/heic"))
			Expect(resolveMIMEType("", "photo.heif")).To(Equal("image/heic"))
		})
	})

	When("the extension is unknown", func() {
		It("should fall back to the declared type", func() {
			Expect(resolveMIMEType("image/png", "receipt.dat")).To(Equal("image/png"))
		})

		It("should normalize the declared type", func() {
			Expect(resolveMIMEType("  IMAGE/PNG ", "receipt")).To(Equal("image/png"))
		})
	})

	When("both extension and declared type are absent", func() {
		It("should default to image/jpeg", func() {
			Expect(resolveMIMEType("", "receipt")).To(Equal("image/jpeg"))
		})
	})
})

var _ = Describe("PrepareImage", func() {
	When("the document is a plain image", func() {
		It("should pass the bytes through unmodified", func() {
			data := []byte("not really a png, but nobody decodes it here")
			out, mimeType, err := PrepareImage(data, "image/png", "receipt.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(data))
			Expect(mimeType).To(Equal("image/png"))
		})
	})

	When("the document claims to be HEIC but is corrupt", func() {
		It("should return a ConversionError", func() {
			_, _, err := PrepareImage([]byte("definitely not heic"), "", "photo.heic")
			Expect(err).To(HaveOccurred())

			var convErr *ConversionError
			Expect(errors.As(err, &convErr)).To(BeTrue())
		})
	})

	When("the document claims to be a PDF but is corrupt", func() {
		It("should return a ConversionError", func() {
			_, _, err := PrepareImage([]byte("definitely not a pdf"), "application/pdf", "receipt.pdf")
			Expect(err).To(HaveOccurred())

			var convErr *ConversionError
			Expect(errors.As(err, &convErr)).To(BeTrue())
		})
	})
})
