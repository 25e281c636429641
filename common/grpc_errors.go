package common

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain tags the ErrorInfo detail attached to mapped errors.
const ErrorDomain = "storefront"

// MapCommandError converts a CommandError to a gRPC status error carrying
// its Reason as an ErrorInfo detail. Non-CommandError values are wrapped as
// Internal.
func MapCommandError(err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		st := status.New(grpcCode(cmdErr.Code), cmdErr.Error())
		if cmdErr.Reason != "" {
			if detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
				Reason: string(cmdErr.Reason),
				Domain: ErrorDomain,
			}); derr == nil {
				st = detailed
			}
		}
		return st.Err()
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}

// StatusReason extracts the Reason from a status error produced by
// MapCommandError, or "".
func StatusReason(err error) Reason {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == ErrorDomain {
			return Reason(info.Reason)
		}
	}
	return ""
}

func grpcCode(code StatusCode) codes.Code {
	switch code {
	case StatusInvalidArgument:
		return codes.InvalidArgument
	case StatusFailedPrecondition:
		return codes.FailedPrecondition
	case StatusNotFound:
		return codes.NotFound
	case StatusUnavailable:
		return codes.Unavailable
	case StatusAborted:
		return codes.Aborted
	case StatusPermissionDenied:
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}
