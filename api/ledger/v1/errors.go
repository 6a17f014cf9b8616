package ledgerv1

import (
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// ErrorDomain is the errdetails.ErrorInfo domain of ledger errors.
const ErrorDomain = "provenance-ledger"

// CodeMetadataKey holds the numeric ledger error code in ErrorInfo metadata.
const CodeMetadataKey = "code"

// LedgerCode extracts the numeric ledger error code from a gRPC error.
func LedgerCode(err error) (int, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return 0, false
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		code, err := strconv.Atoi(info.GetMetadata()[CodeMetadataKey])
		if err != nil {
			return 0, false
		}
		return code, true
	}
	return 0, false
}
