package ledger

import (
	"errors"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// GRPCCode returns the gRPC status code for a ledger error.
func GRPCCode(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return codes.PermissionDenied

	case errors.Is(err, domain.ErrProductExists),
		errors.Is(err, domain.ErrRoleExists):
		return codes.AlreadyExists

	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrHistoryEntryNotFound),
		errors.Is(err, domain.ErrAuditEntryNotFound),
		errors.Is(err, domain.ErrRoleNotAssigned):
		return codes.NotFound

	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidProductID),
		errors.Is(err, domain.ErrInvalidLocation),
		errors.Is(err, domain.ErrInvalidReason),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidOwner):
		return codes.InvalidArgument

	case errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrOwnerNotSet):
		return codes.FailedPrecondition

	default:
		return codes.Internal
	}
}

// mapDomainErrorToGRPC converts domain errors to gRPC status errors.
// Coded errors carry an ErrorInfo detail with the numeric ledger code.
func mapDomainErrorToGRPC(err error) error {
	if err == nil {
		return nil
	}

	code := GRPCCode(err)
	if code == codes.Internal {
		// Unknown error - do not leak internals
		return status.Error(codes.Internal, "internal server error")
	}

	st := status.New(code, err.Error())
	ledgerCode, ok := domain.CodeOf(err)
	if !ok {
		return st.Err()
	}

	withInfo, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: ledgerCode.String(),
		Domain: pb.ErrorDomain,
		Metadata: map[string]string{
			pb.CodeMetadataKey: strconv.Itoa(int(ledgerCode)),
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return withInfo.Err()
}
