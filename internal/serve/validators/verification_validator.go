package validators

import (
	"strings"

	"github.com/stellar/stellar-verify-sender/internal/utils"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

type SendVerificationRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	Channel     string `json:"channel"`
	ClientType  string `json:"client_type"`
	// Locales is an Accept-Language formatted list of the client's preferred languages.
	Locales string `json:"locales"`
}

type ApproveVerificationRequest struct {
	Context string `json:"context"`
}

type VerificationValidator struct {
	*Validator
}

func NewVerificationValidator() *VerificationValidator {
	return &VerificationValidator{Validator: NewValidator()}
}

// ValidateSendRequest validates the request and builds the verification to send from it.
func (vv *VerificationValidator) ValidateSendRequest(req *SendVerificationRequest) verify.VerificationRequest {
	if req == nil {
		vv.Check(false, "body", "request body is empty")
		return verify.VerificationRequest{}
	}

	phoneNumber := strings.TrimSpace(req.PhoneNumber)
	code := strings.TrimSpace(req.Code)

	vv.CheckError(utils.ValidatePhoneNumber(phoneNumber), "phone_number", "")
	vv.CheckError(utils.ValidateVerificationCode(code), "code", "")

	channel, err := verify.ParseChannel(req.Channel)
	vv.CheckError(err, "channel", "channel must be one of [sms call]")

	return verify.VerificationRequest{
		Destination:    phoneNumber,
		Code:           code,
		Channel:        channel,
		ClientType:     utils.TrimAndLower(req.ClientType),
		LanguageRanges: verify.ParseLanguageRanges(req.Locales),
	}
}

func (vv *VerificationValidator) ValidateApproveRequest(verificationSID string, req *ApproveVerificationRequest) {
	vv.Check(!utils.IsBlank(verificationSID), "verification_sid", "verification_sid is required")
	if req != nil {
		req.Context = strings.TrimSpace(req.Context)
	}
}
