package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/smartsupply/internal"
)

// tamper flips one character in the middle of the signature segment.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	i := len(sig) / 2
	if sig[i] == 'A' {
		sig[i] = 'B'
	} else {
		sig[i] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokenGen *JWTTokenGenerator
		now      time.Time
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		tokenGen = NewJWTTokenGenerator(testSecret, time.Hour, 0).WithClock(func() time.Time { return now })
	})

	ginkgo.Describe("Issue and Verify", func() {
		ginkgo.It("should recover exactly the issued subject, email and role", func() {
			token, err := tokenGen.Issue("7d1f0c5e-4f1c-4a8e-9a55-0e6a1d6c2b11", "a@x.com", "PROCUREMENT")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokenGen.Verify(token)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Subject).To(gomega.Equal("7d1f0c5e-4f1c-4a8e-9a55-0e6a1d6c2b11"))
			gomega.Expect(claims.Email).To(gomega.Equal("a@x.com"))
			gomega.Expect(claims.Role).To(gomega.Equal("PROCUREMENT"))
			gomega.Expect(claims.IssuedAt.Time).To(gomega.BeTemporally("==", now))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("==", now.Add(time.Hour)))
		})

		ginkgo.It("should default to a seven day lifetime", func() {
			gen := NewJWTTokenGenerator(testSecret, 0, 0).WithClock(func() time.Time { return now })
			token, err := gen.Issue("subject", "a@x.com", "ADMIN")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := gen.Verify(token)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)).To(gomega.Equal(7 * 24 * time.Hour))
		})

		ginkgo.It("should refuse to issue without a subject", func() {
			_, err := tokenGen.Issue("", "a@x.com", "ADMIN")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("expiry", func() {
		var token string

		ginkgo.BeforeEach(func() {
			var err error
			token, err = tokenGen.Issue("subject", "a@x.com", "ADMIN")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should accept a token one second before expiry", func() {
			now = now.Add(time.Hour - time.Second)
			_, err := tokenGen.Verify(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a token at exactly its expiry", func() {
			now = now.Add(time.Hour)
			_, err := tokenGen.Verify(token)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a token after expiry", func() {
			now = now.Add(2 * time.Hour)
			_, err := tokenGen.Verify(token)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})

		ginkgo.It("should honour the configured leeway", func() {
			tokenGen.Leeway = 30 * time.Second
			now = now.Add(time.Hour + 10*time.Second)
			_, err := tokenGen.Verify(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a token at exactly expiry plus leeway", func() {
			tokenGen.Leeway = 30 * time.Second
			now = now.Add(time.Hour + 30*time.Second)
			_, err := tokenGen.Verify(token)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})

		ginkgo.It("should cap the leeway at five minutes", func() {
			gen := NewJWTTokenGenerator(testSecret, time.Hour, time.Hour)
			gomega.Expect(gen.Leeway).To(gomega.Equal(5 * time.Minute))
		})
	})

	ginkgo.Describe("rejection", func() {
		ginkgo.It("should reject a tampered signature", func() {
			token, err := tokenGen.Issue("subject", "a@x.com", "ADMIN")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.Verify(tamper(token))

			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			other := NewJWTTokenGenerator("another-secret-that-is-long-enough-too", time.Hour, 0).WithClock(func() time.Time { return now })
			token, err := other.Issue("subject", "a@x.com", "ADMIN")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.Verify(token)

			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject the none algorithm", func() {
			claims := &Claims{
				Email: "a@x.com",
				Role:  "ADMIN",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "subject",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.Verify(token)

			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a token without a subject", func() {
			claims := &Claims{
				Email: "a@x.com",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.Verify(token)

			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a token without an expiry", func() {
			claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "subject"}}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.Verify(token)

			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a token from another issuer when an issuer is configured", func() {
			tokenGen.Issuer = "smartsupply"
			other := NewJWTTokenGenerator(testSecret, time.Hour, 0).WithClock(func() time.Time { return now })
			other.Issuer = "someone-else"
			token, err := other.Issue("subject", "a@x.com", "ADMIN")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokenGen.Verify(token)

			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject malformed input", func() {
			for _, raw := range []string{"", "abc", "a.b.c", "Bearer x.y.z"} {
				_, err := tokenGen.Verify(raw)
				gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue(), raw)
			}
		})
	})
})
