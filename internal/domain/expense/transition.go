package expense

import (
	"fmt"
	"time"
)

type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionReview  Transition = "review"
	TransitionApprove Transition = "approve"
	TransitionReject  Transition = "reject"
	TransitionPay     Transition = "pay"
	TransitionReopen  Transition = "reopen"
	TransitionCancel  Transition = "cancel"
)

var transitions = map[Transition]struct {
	from []Status
	to   Status
}{
	TransitionSubmit:  {from: []Status{StatusDraft}, to: StatusSubmitted},
	TransitionReview:  {from: []Status{StatusSubmitted}, to: StatusReviewed},
	TransitionApprove: {from: []Status{StatusReviewed}, to: StatusApproved},
	TransitionReject:  {from: []Status{StatusSubmitted, StatusReviewed}, to: StatusRejected},
	TransitionPay:     {from: []Status{StatusApproved}, to: StatusPaid},
	TransitionReopen:  {from: []Status{StatusRejected}, to: StatusDraft},
	TransitionCancel:  {from: []Status{StatusDraft}, to: StatusCancelled},
}

// Next returns the status reached by applying t to from.
func Next(from Status, t Transition) (Status, error) {
	rule, ok := transitions[t]
	if !ok {
		return "", fmt.Errorf("%w: unknown transition %q", ErrInvalidTransition, t)
	}
	for _, s := range rule.from {
		if s == from {
			return rule.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s a %s report", ErrInvalidTransition, t, from)
}

// TransitionInput carries the actor and optional data of a transition.
type TransitionInput struct {
	ActorID          string
	Reason           string
	PaymentReference string
	At               time.Time
}

// Apply moves r through t, enforcing ownership and segregation of duties.
func (r *Report) Apply(t Transition, in TransitionInput) error {
	next, err := Next(r.Status, t)
	if err != nil {
		return err
	}

	switch t {
	case TransitionSubmit, TransitionReopen, TransitionCancel:
		if in.ActorID != r.RequesterID {
			return ErrNotOwner
		}
	case TransitionReview, TransitionApprove, TransitionReject, TransitionPay:
		if in.ActorID == r.RequesterID {
			return ErrSelfApproval
		}
	}

	at := in.At
	actor := in.ActorID
	switch t {
	case TransitionSubmit:
		if len(r.Items) == 0 {
			return ErrNoItems
		}
		r.SubmittedAt = &at
	case TransitionReview:
		r.ReviewedBy, r.ReviewedAt = &actor, &at
	case TransitionApprove:
		r.ApprovedBy, r.ApprovedAt = &actor, &at
	case TransitionReject:
		if in.Reason == "" {
			return ErrReasonRequired
		}
		reason := in.Reason
		r.RejectedBy, r.RejectedAt, r.RejectionReason = &actor, &at, &reason
	case TransitionPay:
		if in.PaymentReference == "" {
			return ErrPaymentReferenceRequired
		}
		ref := in.PaymentReference
		r.PaidBy, r.PaidAt, r.PaymentReference = &actor, &at, &ref
	case TransitionReopen:
		r.SubmittedAt = nil
		r.ReviewedBy, r.ReviewedAt = nil, nil
		r.ApprovedBy, r.ApprovedAt = nil, nil
		r.RejectedBy, r.RejectedAt, r.RejectionReason = nil, nil, nil
	}

	r.Status = next
	r.UpdatedAt = at
	return nil
}
