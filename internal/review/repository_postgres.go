package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateProposal opens a proposal. The partial unique index on pending
// raw texts makes a concurrent duplicate resolve to the existing row.
func (r *PostgresRepository) CreateProposal(ctx context.Context, draft normalize.ProposalDraft) (string, error) {
	candidates, err := json.Marshal(draft.Candidates)
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}

	id := uuid.NewString()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO review_proposals (id, raw_text, source, candidates, best_score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (raw_text) WHERE status = 'pending' DO NOTHING
	`, id, draft.RawText, draft.Source, candidates, draft.BestScore)
	if err != nil {
		return "", fmt.Errorf("create proposal: %w", err)
	}

	// Either our row or the concurrent winner.
	existing, open, err := r.FindOpenProposal(ctx, draft.RawText)
	if err != nil {
		return "", err
	}
	if !open {
		return id, nil
	}
	return existing, nil
}

func (r *PostgresRepository) FindOpenProposal(ctx context.Context, rawText string) (string, bool, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM review_proposals WHERE raw_text = $1 AND status = 'pending'
	`, rawText).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find open proposal: %w", err)
	}
	return id, true, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Proposal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, raw_text, source, candidates, best_score, status,
			COALESCE(chosen_sku, ''), new_product, created_at, resolved_at
		FROM review_proposals
		WHERE id = $1
	`, id)

	p, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context, limit int) ([]Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, raw_text, source, candidates, best_score, status,
			COALESCE(chosen_sku, ''), new_product, created_at, resolved_at
		FROM review_proposals
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending proposals: %w", err)
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Resolve closes a pending proposal. The status guard in the WHERE clause
// makes resolution terminal: a second verdict hits zero rows.
func (r *PostgresRepository) Resolve(ctx context.Context, id, status, chosenSKU string, newProduct *normalize.NewProductSpec) error {
	var productJSON []byte
	if newProduct != nil {
		var err error
		productJSON, err = json.Marshal(newProduct)
		if err != nil {
			return fmt.Errorf("encode new product: %w", err)
		}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE review_proposals
		SET status = $2, chosen_sku = NULLIF($3, ''), new_product = $4, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, status, chosenSKU, productJSON)
	if err != nil {
		return fmt.Errorf("resolve proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrResolved
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row rowScanner) (*Proposal, error) {
	var p Proposal
	var candidates []byte
	var newProduct []byte

	err := row.Scan(&p.ID, &p.RawText, &p.Source, &candidates, &p.BestScore,
		&p.Status, &p.ChosenSKU, &newProduct, &p.CreatedAt, &p.ResolvedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(candidates, &p.Candidates); err != nil {
		p.Candidates = []matching.Candidate{}
	}
	if len(newProduct) > 0 {
		var spec normalize.NewProductSpec
		if err := json.Unmarshal(newProduct, &spec); err == nil {
			p.NewProduct = &spec
		}
	}
	return &p, nil
}
