// Package committer implements the Golden Mutation Pattern for Spanner transactions.
//
// Repositories never write. They turn domain objects into *spanner.Mutation values,
// which are collected into a CommitPlan and buffered into one read-write transaction:
//
//	err := c.Run(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*CommitPlan, error) {
//	    // 1. Read what the operation needs through txn
//	    // 2. Call domain methods (pure business logic)
//	    // 3. Collect mutations
//	    plan := committer.NewPlan()
//	    plan.Add(productModel.InsertMut(data))
//	    plan.Add(auditModel.InsertMut(entry))
//	    return plan, nil
//	})
//
// Either every mutation of the plan is committed or none is. Spanner may run the
// callback more than once when a transaction aborts, so it must not have side effects.
package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// CommitPlan is a typed wrapper around Spanner mutations for the Golden Mutation Pattern.
// It collects mutations from multiple sources and applies them atomically.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// PlanFunc reads through txn and returns the mutations to commit.
// Returning an error rolls the transaction back.
type PlanFunc func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*CommitPlan, error)

// Committer provides transaction execution for CommitPlans.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Run executes fn inside a read-write transaction and buffers the plan it returns.
// Errors returned by fn are passed through unwrapped so callers can match sentinels.
func (c *Committer) Run(ctx context.Context, fn PlanFunc) error {
	var fnErr error
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		fnErr = nil
		plan, err := fn(ctx, txn)
		if err != nil {
			fnErr = err
			return err
		}
		if plan == nil || plan.IsEmpty() {
			return nil
		}
		return txn.BufferWrite(plan.Mutations())
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}
