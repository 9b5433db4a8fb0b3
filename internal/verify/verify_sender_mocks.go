package verify

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockVerifySender struct {
	mock.Mock
}

var _ VerifySenderInterface = (*MockVerifySender)(nil)

func (m *MockVerifySender) SendCode(ctx context.Context, vr VerificationRequest) VerificationResult {
	return m.Called(ctx, vr).Get(0).(VerificationResult)
}

func (m *MockVerifySender) SendSMSVerification(ctx context.Context, destination, clientType, code string, ranges []LanguageRange) VerificationResult {
	return m.Called(ctx, destination, clientType, code, ranges).Get(0).(VerificationResult)
}

func (m *MockVerifySender) SendVoiceVerification(ctx context.Context, destination, code string, ranges []LanguageRange) VerificationResult {
	return m.Called(ctx, destination, code, ranges).Get(0).(VerificationResult)
}

func (m *MockVerifySender) ReportVerificationSucceeded(ctx context.Context, verificationSID, userAgent, verificationContext string) bool {
	return m.Called(ctx, verificationSID, userAgent, verificationContext).Bool(0)
}
