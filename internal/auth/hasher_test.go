package auth

import (
	"errors"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Argon2Hasher", func() {
	var hasher *Argon2Hasher

	ginkgo.BeforeEach(func() {
		hasher = NewArgon2Hasher(fastArgon2Params())
	})

	ginkgo.Describe("Hash", func() {
		ginkgo.It("should produce a PHC string with the configured parameters", func() {
			encoded, err := hasher.Hash("longenough1")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(encoded).To(gomega.HavePrefix("$argon2id$v=19$m=1024,t=1,p=1$"))
			gomega.Expect(strings.Split(encoded, "$")).To(gomega.HaveLen(6))
			gomega.Expect(encoded).ToNot(gomega.ContainSubstring("longenough1"))
		})

		ginkgo.It("should salt every hash differently", func() {
			first, err := hasher.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			second, err := hasher.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(first).ToNot(gomega.Equal(second))
		})
	})

	ginkgo.Describe("Verify", func() {
		ginkgo.It("should accept the original password and reject any other", func() {
			encoded, err := hasher.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			ok, err := hasher.Verify(encoded, "longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())

			ok, err = hasher.Verify(encoded, "longenough2")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("should verify with the parameters stored in the hash", func() {
			// Given
			old := NewArgon2Hasher(Argon2Params{Time: 2, MemoryKiB: 2048, Threads: 2, SaltLength: 8, KeyLength: 16})
			encoded, err := old.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			ok, err := hasher.Verify(encoded, "longenough1")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(hasher.NeedsRehash(encoded)).To(gomega.BeTrue())
		})

		ginkgo.DescribeTable("malformed hashes",
			func(encoded string) {
				ok, err := hasher.Verify(encoded, "longenough1")

				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(errors.Is(err, ErrMalformedHash)).To(gomega.BeTrue())
			},
			ginkgo.Entry("empty", ""),
			ginkgo.Entry("bcrypt", "$2b$10$abcdefghijklmnopqrstuu"),
			ginkgo.Entry("argon2i", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("old version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("zero iterations", "$argon2id$v=19$m=1024,t=0,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("missing key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$"),
			ginkgo.Entry("memory beyond bound", "$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("iterations beyond bound", "$argon2id$v=19$m=1024,t=100000,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5"),
			ginkgo.Entry("oversized key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$"+strings.Repeat("A", 2048)),
		)
	})

	ginkgo.Describe("NeedsRehash", func() {
		ginkgo.It("should be false for a hash made with the current parameters", func() {
			encoded, err := hasher.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(hasher.NeedsRehash(encoded)).To(gomega.BeFalse())
		})
	})
})
