package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/notification"
)

func TestNewStatusResolverKnownPolicy(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	resolver := newStatusResolver("Aggressive", zap.New(core))

	assert.Equal(t, domain.PolicyAggressive, resolver.Policy().Name())
	assert.Equal(t, 0, logs.FilterMessage("unknown status policy, using default").Len())
	selected := logs.FilterMessage("status policy selected").All()
	if assert.Len(t, selected, 1) {
		assert.Equal(t, domain.PolicyAggressive, selected[0].ContextMap()["policy"])
	}
}

func TestNewStatusResolverUnknownPolicyFallsBack(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	resolver := newStatusResolver("agressive", zap.New(core))

	assert.Equal(t, domain.PolicyDefault, resolver.Policy().Name())
	warned := logs.FilterMessage("unknown status policy, using default").All()
	if assert.Len(t, warned, 1) {
		assert.Equal(t, "agressive", warned[0].ContextMap()["requested"])
	}
	selected := logs.FilterMessage("status policy selected").All()
	if assert.Len(t, selected, 1) {
		assert.Equal(t, domain.PolicyDefault, selected[0].ContextMap()["policy"])
	}
}

func TestNewMailerPicksTransport(t *testing.T) {
	logger := zap.NewNop()

	assert.IsType(t, &notification.LogMailer{}, newMailer(config.SMTPConfig{}, logger))
	assert.IsType(t, &notification.SMTPMailer{}, newMailer(config.SMTPConfig{Host: "mail.local"}, logger))
}
