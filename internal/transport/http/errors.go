package http

import (
	"encoding/json"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
)

type errorBody struct {
	Code  int    `json:"code,omitempty"`
	Error string `json:"error"`
}

// httpStatus maps a gRPC status code to the matching HTTP status.
func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.FailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	body := errorBody{Error: st.Message()}
	if code, ok := pb.LedgerCode(err); ok {
		body.Code = code
	}
	writeJSON(w, httpStatus(st.Code()), body)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
