package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess           = "success"
	outcomeInvalidCredential = "invalid_credentials"
	outcomeValidationFailed  = "validation_failed"
	outcomeConflict          = "conflict"
	outcomeError             = "error"
)

// Metrics counts authentication outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	LoginAttemptsTotal   *prometheus.CounterVec
	RegistrationsTotal   *prometheus.CounterVec
	TokenRejectionsTotal *prometheus.CounterVec
	AuthorizationDenials *prometheus.CounterVec
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartsupply_auth_login_attempts_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartsupply_auth_registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartsupply_auth_token_rejections_total",
				Help: "Total number of rejected bearer tokens by reason",
			},
			[]string{"reason"},
		),
		AuthorizationDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartsupply_auth_authorization_denials_total",
				Help: "Total number of requests denied by the permission gate",
			},
			[]string{"capability"},
		),
	}

	registry.MustRegister(
		m.LoginAttemptsTotal,
		m.RegistrationsTotal,
		m.TokenRejectionsTotal,
		m.AuthorizationDenials,
	)

	return m
}

func (m *Metrics) login(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) registration(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) tokenRejected(reason string) {
	if m == nil {
		return
	}
	m.TokenRejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) denied(c Capability) {
	if m == nil {
		return
	}
	m.AuthorizationDenials.WithLabelValues(string(c)).Inc()
}
