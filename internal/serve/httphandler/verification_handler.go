package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/stellar/stellar-verify-sender/internal/serve/httperror"
	"github.com/stellar/stellar-verify-sender/internal/serve/validators"
	"github.com/stellar/stellar-verify-sender/internal/utils"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

type VerificationHandler struct {
	VerifySender verify.VerifySenderInterface
}

type SendVerificationResponse struct {
	VerificationSID string `json:"verification_sid"`
}

type ApproveVerificationResponse struct {
	Approved bool `json:"approved"`
}

// PostVerification sends a verification code. The preferred locales default to the Accept-Language header.
func (h VerificationHandler) PostVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqBody validators.SendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("invalid request body", err, nil).Render(w)
		return
	}
	if utils.IsBlank(reqBody.Locales) {
		reqBody.Locales = r.Header.Get("Accept-Language")
	}

	v := validators.NewVerificationValidator()
	verificationRequest := v.ValidateSendRequest(&reqBody)
	if v.HasErrors() {
		httperror.BadRequest("", nil, v.Errors).Render(w)
		return
	}

	result := h.VerifySender.SendCode(ctx, verificationRequest)
	sid, ok := result.VerificationSID()
	if !ok {
		log.Ctx(ctx).Warnf("Verification to %s was not created, result kind %s",
			utils.TruncateString(verificationRequest.Destination, 3), result.Kind)
		httperror.BadGateway("", result.Err, nil).WithErrorCode(httperror.Code502_0).Render(w)
		return
	}

	httpjson.RenderStatus(w, http.StatusCreated, SendVerificationResponse{VerificationSID: sid}, httpjson.JSON)
}

// ApproveVerification marks the verification in the URL as approved.
func (h VerificationHandler) ApproveVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	verificationSID := chi.URLParam(r, "sid")

	var reqBody validators.ApproveVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil && !errors.Is(err, io.EOF) {
		httperror.BadRequest("invalid request body", err, nil).Render(w)
		return
	}

	v := validators.NewVerificationValidator()
	v.ValidateApproveRequest(verificationSID, &reqBody)
	if v.HasErrors() {
		httperror.BadRequest("", nil, v.Errors).Render(w)
		return
	}

	if !h.VerifySender.ReportVerificationSucceeded(ctx, verificationSID, r.UserAgent(), reqBody.Context) {
		httpjson.RenderStatus(w, http.StatusBadGateway, ApproveVerificationResponse{Approved: false}, httpjson.JSON)
		return
	}

	httpjson.RenderStatus(w, http.StatusOK, ApproveVerificationResponse{Approved: true}, httpjson.JSON)
}
