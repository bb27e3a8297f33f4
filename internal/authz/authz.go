// Package authz decides who may act on documents, rentals and contracts.
// Decisions are pure: callers load a Snapshot of the relationships first
// and the resolver only reads it.
package authz

import (
	"estate-api/internal/apperr"
)

type Operation string

const (
	OpAttachToProperty Operation = "attach_to_property"
	OpReview           Operation = "review"
	OpDownload         Operation = "download"
	OpDelete           Operation = "delete"
	OpRentalStatus     Operation = "rental_status"
	OpContractView     Operation = "contract_view"
	OpContractSign     Operation = "contract_sign"
	OpContractNotarize Operation = "contract_notarize"
)

// Snapshot is the relationship graph around one entity at decision time.
type Snapshot struct {
	// Who uploaded the document, empty for rentals and contracts
	UploaderID string
	// Property the entity is tied to, nil when there is none
	PropertyID      *uint
	PropertyOwnerID string
	// Renter of a rental or a contract
	RenterID string
	// Uploader has a rental, in any status, on a property the actor owns
	UploaderRentsFromActor bool
}

type Rule struct {
	Name  string
	Allow func(actor string, s Snapshot) bool
}

var (
	ruleUploader = Rule{
		Name: "uploader",
		Allow: func(actor string, s Snapshot) bool {
			return s.UploaderID != "" && s.UploaderID == actor
		},
	}
	rulePropertyOwner = Rule{
		Name: "property_owner",
		Allow: func(actor string, s Snapshot) bool {
			return s.PropertyID != nil && s.PropertyOwnerID == actor
		},
	}
	// Tenant documents aren't tied to a property, landlords reach them
	// through the tenant's applications
	ruleRentalLink = Rule{
		Name: "rental_link",
		Allow: func(actor string, s Snapshot) bool {
			return s.PropertyID == nil && s.UploaderRentsFromActor
		},
	}
	ruleRenter = Rule{
		Name: "renter",
		Allow: func(actor string, s Snapshot) bool {
			return s.RenterID != "" && s.RenterID == actor
		},
	}
)

var table = map[Operation][]Rule{
	OpAttachToProperty: {rulePropertyOwner},
	OpReview:           {rulePropertyOwner, ruleRentalLink},
	OpDownload:         {ruleUploader, rulePropertyOwner, ruleRentalLink},
	OpDelete:           {ruleUploader},
	OpRentalStatus:     {rulePropertyOwner},
	OpContractView:     {rulePropertyOwner, ruleRenter},
	OpContractSign:     {rulePropertyOwner, ruleRenter},
	OpContractNotarize: {rulePropertyOwner},
}

var denied = map[Operation]string{
	OpAttachToProperty: "You are not the owner of this property.",
	OpReview:           "You are not authorized to review this document.",
	OpDownload:         "You are not authorized to access this document.",
	OpDelete:           "You are not authorized to delete this document.",
	OpRentalStatus:     "Unauthorized",
	OpContractView:     "You are not a party of this contract.",
	OpContractSign:     "You are not a party of this contract.",
	OpContractNotarize: "Only the property owner can notarize this contract.",
}

type Decision struct {
	Allowed bool
	// Name of the rule that allowed the operation, empty when denied
	Rule string
}

// Decide walks the rules of op in order and returns on the first match.
// Unknown operations are always denied.
func Decide(op Operation, actor string, s Snapshot) Decision {
	if actor == "" {
		return Decision{}
	}

	for _, r := range table[op] {
		if r.Allow(actor, s) {
			return Decision{Allowed: true, Rule: r.Name}
		}
	}

	return Decision{}
}

// Check is Decide turned into an error for the caller
func Check(op Operation, actor string, s Snapshot) error {
	if Decide(op, actor, s).Allowed {
		return nil
	}

	msg, ok := denied[op]
	if !ok {
		msg = "Forbidden"
	}

	return apperr.New(apperr.Forbidden, msg)
}
