package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dkropachev/autocatalog/internal/common"
	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/service"
)

const listingColumns = `id, fingerprint, chat_id, msg_id, text, year, price, status,
	posted, repost_chat_id, repost_msg_id, created_at`

// InsertIfAbsent stores the listing unless its fingerprint already exists.
// The conflict check and the insert are a single statement, so concurrent
// inserts of identical text can never both succeed.
func (s *SQLiteStorage) InsertIfAbsent(ctx context.Context, listing *model.Listing) (int64, bool, error) {
	if err := validateContext(ctx); err != nil {
		return 0, false, err
	}
	if err := validateListing(listing); err != nil {
		return 0, false, err
	}

	createdAt := listing.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (fingerprint, chat_id, msg_id, text, year, price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING`,
		listing.Fingerprint, listing.Source.ChatID, listing.Source.MessageID,
		listing.Text, listing.Year, listing.Price, string(model.StatusActive), createdAt,
	)
	if err != nil {
		return 0, false, common.NewStorageError("insert listing", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, false, common.NewStorageError("insert listing", err)
	}

	if rows == 0 {
		// The fingerprint is already present; report the canonical listing.
		var existingID int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM listings WHERE fingerprint = ?`, listing.Fingerprint,
		).Scan(&existingID)
		if err != nil {
			return 0, false, common.NewStorageError("lookup duplicate", err)
		}
		slog.Debug("Duplicate fingerprint ignored",
			"fingerprint", listing.Fingerprint,
			"existing_id", existingID,
			"source", listing.Source)
		return existingID, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, common.NewStorageError("insert listing", err)
	}
	return id, true, nil
}

// GetByID returns the listing or common.ErrNotFound.
func (s *SQLiteStorage) GetByID(ctx context.Context, id int64) (*model.Listing, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM listings WHERE id = ?`, listingColumns), id)

	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewStorageError("get listing", err)
	}
	return listing, nil
}

// QueryActive returns active listings matching the predicate, newest first,
// truncated at limit. Sold listings never appear regardless of predicate.
func (s *SQLiteStorage) QueryActive(ctx context.Context, pred service.ListingPredicate, limit int) ([]model.Listing, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`SELECT %s FROM listings WHERE status = ?`, listingColumns))
	args := []any{string(model.StatusActive)}

	if pred.Year != nil {
		sb.WriteString(` AND year = ?`)
		args = append(args, *pred.Year)
	}

	switch {
	case pred.PriceMin != nil && pred.PriceMax != nil:
		sb.WriteString(` AND price BETWEEN ? AND ?`)
		args = append(args, *pred.PriceMin, *pred.PriceMax)
	case pred.PriceOp != "":
		if !pred.PriceOp.Valid() {
			return nil, fmt.Errorf("invalid price operator %q", pred.PriceOp)
		}
		sb.WriteString(fmt.Sprintf(` AND price %s ?`, pred.PriceOp))
		args = append(args, pred.PriceVal)
	}

	for _, term := range pred.Terms {
		// instr avoids LIKE wildcard escaping; terms are plain substrings.
		sb.WriteString(` AND instr(lower(text), ?) > 0`)
		args = append(args, strings.ToLower(term))
	}

	sb.WriteString(` ORDER BY created_at DESC, id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, common.NewStorageError("query listings", err)
	}
	defer func() { _ = rows.Close() }()

	var listings []model.Listing
	for rows.Next() {
		listing, scanErr := scanListing(rows)
		if scanErr != nil {
			return nil, common.NewStorageError("scan listing", scanErr)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("query listings", err)
	}

	return listings, nil
}

// MarkSold flips an active listing to sold. The transition is conditional in
// SQL, so two concurrent calls cannot both observe an active listing.
func (s *SQLiteStorage) MarkSold(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET status = ? WHERE id = ? AND status = ?`,
		string(model.StatusSold), id, string(model.StatusActive))
	if err != nil {
		return false, common.NewStorageError("mark sold", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, common.NewStorageError("mark sold", err)
	}
	if rows == 1 {
		return false, nil
	}

	// Nothing flipped: the listing is either already sold or missing.
	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM listings WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrNotFound
	}
	if err != nil {
		return false, common.NewStorageError("mark sold", err)
	}
	if status != string(model.StatusSold) {
		return false, common.NewStorageError("mark sold",
			fmt.Errorf("listing %d in unexpected status %q", id, status))
	}
	return true, nil
}

// SetRepostRef records a successful repost. The posted flag is set at most
// once; a second call is a logged no-op.
func (s *SQLiteStorage) SetRepostRef(ctx context.Context, id int64, ref model.SourceRef) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET posted = 1, repost_chat_id = ?, repost_msg_id = ?
		 WHERE id = ? AND posted = 0`,
		ref.ChatID, ref.MessageID, id)
	if err != nil {
		return common.NewStorageError("set repost ref", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return common.NewStorageError("set repost ref", err)
	}
	if rows == 1 {
		return nil
	}

	var posted bool
	err = s.db.QueryRowContext(ctx, `SELECT posted FROM listings WHERE id = ?`, id).Scan(&posted)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return common.NewStorageError("set repost ref", err)
	}
	slog.Debug("Repost ref already set, ignoring", "listing_id", id)
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*model.Listing, error) {
	var (
		listing      model.Listing
		status       string
		repostChatID sql.NullInt64
		repostMsgID  sql.NullInt64
	)

	err := row.Scan(
		&listing.ID, &listing.Fingerprint,
		&listing.Source.ChatID, &listing.Source.MessageID,
		&listing.Text, &listing.Year, &listing.Price, &status,
		&listing.Posted, &repostChatID, &repostMsgID, &listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.Status = model.ListingStatus(status)
	if repostChatID.Valid && repostMsgID.Valid {
		listing.RepostRef = &model.SourceRef{
			ChatID:    repostChatID.Int64,
			MessageID: repostMsgID.Int64,
		}
	}
	return &listing, nil
}

func validateListing(listing *model.Listing) error {
	if listing == nil {
		return fmt.Errorf("listing cannot be nil")
	}
	if listing.Fingerprint == "" {
		return fmt.Errorf("listing fingerprint cannot be empty")
	}
	if listing.Text == "" {
		return fmt.Errorf("listing text cannot be empty")
	}
	return nil
}
