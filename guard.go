// Package keyguard hides fragments of an API key in the binary and
// reassembles them only when the process shows no sign of a debugger or
// instrumentation tooling.
//
// The obfuscation is XOR with a keystream derived from a device identifier.
// It keeps the key out of plain string scans and nothing more.
package keyguard

import (
	"context"

	"github.com/awnumar/memguard"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Guard sequences the environment checks, fragment decryption and integrity
// verification. Every call is independent: nothing is cached between calls.
//
// Guard is safe for concurrent use; it holds no mutable state after NewGuard.
type Guard struct {
	table    Table
	expected uint32
	checks   []Check
	logger   *logrus.Logger
	tel      *telemetry
}

// NewGuard creates a Guard. Without options it uses the compiled table,
// ExpectedChecksum, and a HostProbe with the default tool paths.
func NewGuard(opts ...Option) (*Guard, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	checks, logger, err := o.build()
	if err != nil {
		return nil, err
	}
	tel, err := newTelemetry(o.mp, o.tp)
	if err != nil {
		return nil, err
	}

	return &Guard{
		table:    o.table,
		expected: o.expected,
		checks:   checks,
		logger:   logger,
		tel:      tel,
	}, nil
}

// KeyFragment returns the reconstructed secret for dev, or "" when any
// environment check is positive or no device identifier is available.
// The reason is only logged.
func (g *Guard) KeyFragment(ctx context.Context, dev DeviceContext) string {
	ctx, span := g.tel.start(ctx, "KeyFragment")
	defer span.End()

	buf, err := g.reveal(ctx, dev)
	if err != nil {
		span.SetAttributes(attribute.Bool("keyguard.released", false))
		return ""
	}
	defer buf.Destroy()
	span.SetAttributes(attribute.Bool("keyguard.released", true))
	return string(buf.Bytes())
}

// Reveal is KeyFragment with the secret kept in a memguard LockedBuffer and
// the reason for a refusal returned. The caller must Destroy the buffer.
func (g *Guard) Reveal(ctx context.Context, dev DeviceContext) (*memguard.LockedBuffer, error) {
	ctx, span := g.tel.start(ctx, "Reveal")
	defer span.End()

	buf, err := g.reveal(ctx, dev)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return buf, nil
}

func (g *Guard) reveal(ctx context.Context, dev DeviceContext) (*memguard.LockedBuffer, error) {
	if c, detected := g.firstDetection(ctx); detected {
		g.tel.recordRequest(ctx, outcomeDenied)
		g.logger.WithFields(operationFields("reveal", logrus.Fields{
			"check": c.Name,
		})).Error("Security: environment compromised, returning empty key")
		return nil, c.Err
	}

	id, err := deviceID(dev)
	if err != nil {
		g.tel.recordRequest(ctx, outcomeNoDevice)
		g.logger.WithFields(operationFields("reveal")).Debug("No device identifier, returning empty key")
		return nil, err
	}

	secret, err := g.table.assemble(id)
	if err != nil {
		g.tel.recordRequest(ctx, outcomeFailed)
		return nil, err
	}
	n := len(secret)
	buf := memguard.NewBufferFromBytes(secret)

	g.tel.recordRequest(ctx, outcomeReleased)
	g.logger.WithFields(operationFields("reveal", logrus.Fields{
		"length": n,
	})).Info("Native key fragment assembled")
	return buf, nil
}

// ValidateRuntimeSecurity runs every environment check and reports true
// only if none found evidence of a debugger or tooling. It does not affect
// secret availability.
func (g *Guard) ValidateRuntimeSecurity(ctx context.Context) bool {
	ctx, span := g.tel.start(ctx, "ValidateRuntimeSecurity")
	defer span.End()

	status := statusOf(g.runChecks(ctx))
	span.SetAttributes(attribute.String("keyguard.status", status.String()))
	g.logger.WithFields(operationFields("validate", logrus.Fields{
		"result": status.String(),
	})).Info("Native security validation result")
	return status == StatusSecure
}

// PerformIntegrityCheck reports whether the fragment table checksum equals
// the expected build-time value.
func (g *Guard) PerformIntegrityCheck(ctx context.Context) bool {
	ctx, span := g.tel.start(ctx, "PerformIntegrityCheck")
	defer span.End()

	ok := g.integrity(ctx)
	span.SetAttributes(attribute.Bool("keyguard.integrity_ok", ok))
	return ok
}

// Assess runs every environment check and the integrity check and returns
// the individual outcomes. Status reflects the environment checks only.
func (g *Guard) Assess(ctx context.Context) Report {
	ctx, span := g.tel.start(ctx, "Assess")
	defer span.End()

	findings := g.runChecks(ctx)
	r := Report{
		Status:      statusOf(findings),
		Findings:    findings,
		IntegrityOK: g.integrity(ctx),
		Checksum:    g.table.Checksum(),
	}
	span.SetAttributes(
		attribute.String("keyguard.status", r.Status.String()),
		attribute.StringSlice("keyguard.detected", r.Detected()),
	)
	return r
}

// firstDetection evaluates the checks in order and stops at the first positive.
func (g *Guard) firstDetection(ctx context.Context) (Check, bool) {
	for _, c := range g.checks {
		detected := c.Detect(ctx)
		g.tel.recordCheck(ctx, c.Name, detected)
		if detected {
			return c, true
		}
	}
	return Check{}, false
}

// runChecks evaluates every check without short-circuiting.
func (g *Guard) runChecks(ctx context.Context) []Finding {
	findings := make([]Finding, 0, len(g.checks))
	for _, c := range g.checks {
		detected := c.Detect(ctx)
		g.tel.recordCheck(ctx, c.Name, detected)
		if detected {
			g.logger.WithFields(operationFields("validate", logrus.Fields{
				"check": c.Name,
			})).Error("Security validation failed")
		}
		findings = append(findings, Finding{Check: c.Name, Detected: detected})
	}
	return findings
}

func (g *Guard) integrity(ctx context.Context) bool {
	sum := g.table.Checksum()
	ok := sum == g.expected
	g.tel.recordIntegrity(ctx, ok)
	if !ok {
		g.logger.WithFields(operationFields("integrity", logrus.Fields{
			"checksum": sum,
			"expected": g.expected,
		})).Error("Integrity check failed: fragment checksum mismatch")
	}
	g.logger.WithFields(operationFields("integrity", logrus.Fields{
		"result": passFail(ok),
	})).Info("Native integrity check result")
	return ok
}

// statusOf reduces findings with a logical OR.
func statusOf(findings []Finding) Status {
	for _, f := range findings {
		if f.Detected {
			return StatusCompromised
		}
	}
	return StatusSecure
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
