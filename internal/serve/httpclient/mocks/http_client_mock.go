package mocks

import (
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/stellar/stellar-verify-sender/internal/serve/httpclient"
)

type HTTPClientMock struct {
	mock.Mock
}

func (h *HTTPClientMock) Do(req *http.Request) (*http.Response, error) {
	args := h.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

var _ httpclient.HTTPClientInterface = (*HTTPClientMock)(nil)
