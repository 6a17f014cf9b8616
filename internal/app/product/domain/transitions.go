package domain

// Status is the lifecycle position of a product.
type Status string

const (
	StatusRegistered  Status = "registered"
	StatusInTransit   Status = "in-transit"
	StatusDelivered   Status = "delivered"
	StatusTransferred Status = "transferred"
	StatusVerified    Status = "verified"
	StatusReturned    Status = "returned"
	StatusRejected    Status = "rejected"
)

// Lifecycle graph:
//
//	registered  -> in-transit, transferred
//	in-transit  -> delivered, returned
//	delivered   -> verified, rejected
//	transferred -> verified
//	verified, returned, rejected are terminal
//
// Nothing leads back into registered; it is only reachable through registration.
var transitions = map[Status][]Status{
	StatusRegistered:  {StatusInTransit, StatusTransferred},
	StatusInTransit:   {StatusDelivered, StatusReturned},
	StatusDelivered:   {StatusVerified, StatusRejected},
	StatusTransferred: {StatusVerified},
	StatusVerified:    nil,
	StatusReturned:    nil,
	StatusRejected:    nil,
}

// AllStatuses lists every status in declaration order.
func AllStatuses() []Status {
	return []Status{
		StatusRegistered,
		StatusInTransit,
		StatusDelivered,
		StatusTransferred,
		StatusVerified,
		StatusReturned,
		StatusRejected,
	}
}

// IsValidStatus checks membership in the Status enum.
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// IsValidTransition reports whether the graph has an edge from -> to.
func IsValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable in one step from s.
func AllowedTransitions(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether s has no outgoing edge.
func (s Status) IsTerminal() bool {
	return IsValidStatus(s) && len(transitions[s]) == 0
}

func (s Status) String() string { return string(s) }

// RegistrationRole is the role required to register a product.
const RegistrationRole = RoleManufacturer

// RequiredRole returns the role a caller must hold to move a product along from -> to.
// Every edge is manufacturer-gated.
func RequiredRole(from, to Status) Role {
	return RoleManufacturer
}

// TransferRecipientRoles are the roles a transfer recipient may hold.
var TransferRecipientRoles = []Role{RoleDistributor, RoleRetailer}

// CanReceiveTransfer reports whether an identity holding r may become a product's owner by transfer.
func CanReceiveTransfer(r Role) bool {
	for _, allowed := range TransferRecipientRoles {
		if r == allowed {
			return true
		}
	}
	return false
}
