package queries

import "context"

type PaymentReviewReadStore interface {
	ListForReview(ctx context.Context, limit int32) ([]*PaymentReviewItem, error)
}

// PaymentQueries lists confirmations that were flagged for manual reconciliation.
type PaymentQueries interface {
	ListForReview(ctx context.Context, limit int) ([]*PaymentReviewItem, error)
}

type paymentQueriesImpl struct {
	repo PaymentReviewReadStore
}

func NewPaymentQueries(repo PaymentReviewReadStore) PaymentQueries {
	return &paymentQueriesImpl{repo: repo}
}

func (q *paymentQueriesImpl) ListForReview(ctx context.Context, limit int) ([]*PaymentReviewItem, error) {
	return q.repo.ListForReview(ctx, int32(ValidateLimit(limit))) // #nosec G115 -- bounded by ValidateLimit
}
