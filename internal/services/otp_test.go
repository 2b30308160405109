package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPService_IssueSendsCode(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.otp.Issue(context.Background(), "  A@B.com "))

	sent := f.notifier.withSubject("Your OTP Code")
	require.Len(t, sent, 1)
	assert.Equal(t, "a@b.com", sent[0].To)
	assert.Contains(t, sent[0].HTML, "123456")
	assert.Contains(t, sent[0].HTML, "5 minutes")
}

func TestOTPService_IssueValidatesEmail(t *testing.T) {
	f := newFixture(t)

	err := f.otp.Issue(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingFields)

	err = f.otp.Issue(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Empty(t, f.notifier.emails())
}

func TestOTPService_IssueReportsDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail("a@b.com")

	err := f.otp.Issue(context.Background(), "a@b.com")
	var nerr *NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "a@b.com", nerr.To)

	// The code was stored before sending.
	assert.NoError(t, f.otp.Check("a@b.com", "123456"))
}

func TestOTPService_MismatchThenSuccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.otp.Issue(context.Background(), "a@b.com"))

	assert.ErrorIs(t, f.otp.Check("a@b.com", "000000"), ErrOTPMismatch)
	assert.False(t, f.otp.IsVerified("a@b.com"))

	require.NoError(t, f.otp.Check("a@b.com", "123456"))
	assert.True(t, f.otp.IsVerified("a@b.com"))
}

func TestOTPService_CodeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.otp.Issue(context.Background(), "a@b.com"))

	require.NoError(t, f.otp.Check("a@b.com", "123456"))
	assert.ErrorIs(t, f.otp.Check("a@b.com", "123456"), ErrOTPNotFound)
}

func TestOTPService_ReissueInvalidatesOldCode(t *testing.T) {
	f := newFixture(t)

	f.otp.generate = func() (string, error) { return "111111", nil }
	require.NoError(t, f.otp.Issue(context.Background(), "a@b.com"))
	f.otp.generate = func() (string, error) { return "222222", nil }
	require.NoError(t, f.otp.Issue(context.Background(), "a@b.com"))

	assert.ErrorIs(t, f.otp.Check("a@b.com", "111111"), ErrOTPMismatch)
	assert.NoError(t, f.otp.Check("a@b.com", "222222"))
}

func TestOTPService_Expiry(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.otp.Issue(context.Background(), "a@b.com"))

	// Wrong attempts do not move the expiry.
	f.clock.Advance(4 * time.Minute)
	assert.ErrorIs(t, f.otp.Check("a@b.com", "999999"), ErrOTPMismatch)

	// Exactly at expiry the code still works; past it, it does not.
	f.clock.Advance(time.Minute)
	require.NoError(t, f.otp.Issue(context.Background(), "c@d.com"))
	f.clock.Advance(5*time.Minute + time.Second)
	assert.ErrorIs(t, f.otp.Check("c@d.com", "123456"), ErrOTPExpired)
	assert.ErrorIs(t, f.otp.Check("c@d.com", "123456"), ErrOTPNotFound)
}

func TestOTPService_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.otp.Issue(context.Background(), "a@b.com"))

	f.clock.Advance(DefaultOTPTTL)
	assert.NoError(t, f.otp.Check("a@b.com", "123456"))
}

func TestOTPService_ConsumeOnce(t *testing.T) {
	f := newFixture(t)
	f.verify(t, "a@b.com")

	assert.True(t, f.otp.ConsumeVerification("A@b.com"))
	assert.False(t, f.otp.ConsumeVerification("a@b.com"))
}

func TestOTPService_CheckMissingFields(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.otp.Check("", "123456"), ErrMissingFields)
	assert.ErrorIs(t, f.otp.Check("a@b.com", " "), ErrMissingFields)
	assert.ErrorIs(t, f.otp.Check("a@b.com", "123456"), ErrOTPNotFound)
}
