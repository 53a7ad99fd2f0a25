package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/platform/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// captureMailer records the last code sent to each address.
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{codes: map[string]string{}}
}

func (m *captureMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	m.sent++
	return nil
}

func (m *captureMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestOTPService(t *testing.T) (*OTPService, *captureMailer, *fakeClock) {
	t.Helper()
	mailer := newCaptureMailer()
	svc := NewOTPService(NewOTPRepository(dbtest.New(t, &OTPCode{})), mailer, &config.Config{OTPTTL: 10 * time.Minute}, zap.NewNop())
	clock := &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	return svc, mailer, clock
}

func TestOTP_SendAndVerifyConsumesCode(t *testing.T) {
	svc, mailer, _ := newTestOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "  Asha@Example.com "))
	code := mailer.code("asha@example.com")
	require.Len(t, code, 6)

	require.NoError(t, svc.Verify(ctx, "asha@example.com", code))
	err := svc.Verify(ctx, "asha@example.com", code)
	require.ErrorIs(t, err, common.ErrBadRequest)
	apiErr, _ := common.IsAPIError(err)
	assert.Equal(t, "OTP not found or expired", apiErr.Details)
}

func TestOTP_ResendReplacesPreviousCode(t *testing.T) {
	svc, mailer, clock := newTestOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@example.com"))
	first := mailer.code("a@example.com")
	clock.t = clock.t.Add(time.Minute)
	for {
		require.NoError(t, svc.Send(ctx, "a@example.com"))
		if mailer.code("a@example.com") != first {
			break
		}
		clock.t = clock.t.Add(time.Minute)
	}
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", first), common.ErrBadRequest)
}

func TestOTP_Expired(t *testing.T) {
	svc, mailer, clock := newTestOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@example.com"))
	clock.t = clock.t.Add(11 * time.Minute)

	err := svc.Verify(ctx, "a@example.com", mailer.code("a@example.com"))
	require.ErrorIs(t, err, common.ErrBadRequest)
	apiErr, _ := common.IsAPIError(err)
	assert.Equal(t, "OTP has expired", apiErr.Details)
}

func TestOTP_WrongCodeCountsAttempts(t *testing.T) {
	svc, mailer, _ := newTestOTPService(t)
	ctx := context.Background()
	require.NoError(t, svc.Send(ctx, "a@example.com"))
	good := mailer.code("a@example.com")
	bad := "000000"
	if good == bad {
		bad = "111111"
	}

	for i := 0; i < maxOTPAttempts; i++ {
		err := svc.Verify(ctx, "a@example.com", bad)
		require.ErrorIs(t, err, common.ErrBadRequest)
	}
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", good), common.ErrTooManyRequests)
}

func TestOTP_SendIsRateLimited(t *testing.T) {
	svc, mailer, clock := newTestOTPService(t)
	ctx := context.Background()

	for i := 0; i < otpSendBurst; i++ {
		require.NoError(t, svc.Send(ctx, "a@example.com"))
	}
	assert.ErrorIs(t, svc.Send(ctx, "a@example.com"), common.ErrTooManyRequests)
	assert.Equal(t, otpSendBurst, mailer.sent)

	require.NoError(t, svc.Send(ctx, "b@example.com"), "limits are per address")

	clock.t = clock.t.Add(otpSendEvery)
	assert.NoError(t, svc.Send(ctx, "a@example.com"))
}

func TestOTP_PurgeExpired(t *testing.T) {
	svc, _, clock := newTestOTPService(t)
	ctx := context.Background()
	require.NoError(t, svc.Send(ctx, "old@example.com"))
	clock.t = clock.t.Add(9 * time.Minute)
	require.NoError(t, svc.Send(ctx, "new@example.com"))
	clock.t = clock.t.Add(2 * time.Minute)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOTP_ConcurrentWrongGuessesStayWithinLimit(t *testing.T) {
	svc, mailer, _ := newTestOTPService(t)
	ctx := context.Background()
	require.NoError(t, svc.Send(ctx, "a@example.com"))
	good := mailer.code("a@example.com")
	bad := "000000"
	if good == bad {
		bad = "111111"
	}

	const guesses = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		invalid int
	)
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Verify(ctx, "a@example.com", bad)
			if apiErr, ok := common.IsAPIError(err); ok && apiErr.Details == "Invalid OTP" {
				mu.Lock()
				invalid++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, invalid, maxOTPAttempts)
	assert.Error(t, svc.Verify(ctx, "a@example.com", good), "the code is spent once the attempts are")
}

func TestOTP_ConcurrentCorrectCodeSucceedsOnce(t *testing.T) {
	svc, mailer, _ := newTestOTPService(t)
	ctx := context.Background()
	require.NoError(t, svc.Send(ctx, "a@example.com"))
	good := mailer.code("a@example.com")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Verify(ctx, "a@example.com", good) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}

type failingDeleteRepo struct {
	OTPRepository
}

func (failingDeleteRepo) Delete(context.Context, string) error {
	return errors.New("db unavailable")
}

func TestOTP_DiscardFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mailer := newCaptureMailer()
	repo := failingDeleteRepo{NewOTPRepository(dbtest.New(t, &OTPCode{}))}
	svc := NewOTPService(repo, mailer, &config.Config{OTPTTL: time.Minute}, zap.New(core))
	clock := &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@example.com"))
	clock.t = clock.t.Add(2 * time.Minute)
	require.ErrorIs(t, svc.Verify(ctx, "a@example.com", mailer.code("a@example.com")), common.ErrBadRequest)

	entries := logs.FilterMessage("Failed to discard otp").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "expired", entries[0].ContextMap()["reason"])
}
