package internal

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// OwnershipChecker is the data-access capability the ownership validator
// needs: does table contain a row with this id owned by ownerID?
type OwnershipChecker interface {
	OwnedRowExists(ctx context.Context, table, id, ownerField, ownerID string) (bool, error)
}

// OwnershipValidator confirms a resource exists and belongs to the principal
// before a handler runs. It never distinguishes "missing" from "owned by
// someone else".
type OwnershipValidator struct {
	store     OwnershipChecker
	responder *Responder
}

// NewOwnershipValidator creates a validator backed by store.
func NewOwnershipValidator(store OwnershipChecker, responder *Responder) *OwnershipValidator {
	return &OwnershipValidator{store: store, responder: responder}
}

// Validate returns nil when principalID owns the row, otherwise the error
// response to send. Store failures are treated as not found.
func (v *OwnershipValidator) Validate(ctx context.Context, table, resourceID, ownerField, principalID string, info RequestInfo) *Response {
	if !IsValidUUID(resourceID) {
		return v.responder.Error(ctx, http.StatusBadRequest, "Invalid resource id format",
			WithCode(CodeInvalidUUID),
			WithDetails(map[string]string{"id": resourceID}),
			WithRequestInfo(info),
		)
	}

	if ownerField == "" {
		ownerField = DefaultOwnerField
	}

	found := false
	var cause error
	if v.store != nil {
		found, cause = v.store.OwnedRowExists(ctx, table, resourceID, ownerField, principalID)
	}
	if cause != nil || !found {
		opts := []ErrorOption{
			WithCode(CodeResourceNotFound),
			WithDetails(map[string]string{"resource": table}),
			WithRequestInfo(info),
		}
		if cause != nil {
			opts = append(opts, WithCause(cause))
		}
		return v.responder.Error(ctx, http.StatusNotFound, "Resource not found or access denied", opts...)
	}

	return nil
}

// IsValidUUID reports whether s is a canonical hyphenated RFC 4122 UUID of
// version 1 through 5.
func IsValidUUID(s string) bool {
	// uuid.Parse also accepts urn:, braced and unhyphenated forms.
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if v := id.Version(); v < 1 || v > 5 {
		return false
	}
	return id.Variant() == uuid.RFC4122
}
