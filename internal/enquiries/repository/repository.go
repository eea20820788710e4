// Package repository stores enquiries in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no enquiry matches.
var ErrNotFound = errors.New("enquiry not found")

const enquiryColumns = `id, display_name, user_name, mobile_number, secondary_mobile_number,
	gst, gst_status, business_type, business_nature, source,
	whatsapp_chat_id, whatsapp_message_id, whatsapp_sender_name, whatsapp_message_text, whatsapp_status,
	staff, staff_locked, comments, additional_comments, date, created_at, updated_at, updated_by`

// Repo implements Repository with pgx.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new enquiry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.Enquiry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+enquiryColumns+` FROM enquiries WHERE id = $1`, id)
	e, err := scanEnquiry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Enquiry{}, ErrNotFound
	}
	if err != nil {
		return domain.Enquiry{}, fmt.Errorf("find enquiry by id: %w", err)
	}
	return e, nil
}

func (r *Repo) FindByDedupKey(ctx context.Context, mobileNumber, providerMessageID string) (domain.Enquiry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+enquiryColumns+`
		FROM enquiries
		WHERE mobile_number = $1 AND whatsapp_message_id = $2
		LIMIT 1`, mobileNumber, providerMessageID)
	e, err := scanEnquiry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Enquiry{}, ErrNotFound
	}
	if err != nil {
		return domain.Enquiry{}, fmt.Errorf("find enquiry by dedup key: %w", err)
	}
	return e, nil
}

// List returns every enquiry, newest enquiry date first.
func (r *Repo) List(ctx context.Context) ([]domain.Enquiry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+enquiryColumns+` FROM enquiries ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Enquiry, 0)
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enquiry: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return items, nil
}

func (r *Repo) InsertIfAbsent(ctx context.Context, e domain.Enquiry) (domain.Enquiry, bool, error) {
	e = withDefaults(e)
	query := insertQuery + `
		ON CONFLICT (mobile_number, whatsapp_message_id) WHERE whatsapp_message_id IS NOT NULL DO NOTHING
		RETURNING ` + enquiryColumns

	stored, err := scanEnquiry(r.pool.QueryRow(ctx, query, insertArgs(e)...))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Enquiry{}, false, fmt.Errorf("insert enquiry: %w", err)
	}

	// Conflict: another delivery stored the same key first.
	if e.WhatsAppMessageID == nil {
		return domain.Enquiry{}, false, fmt.Errorf("insert enquiry: no row returned")
	}
	existing, err := r.FindByDedupKey(ctx, e.MobileNumber, *e.WhatsAppMessageID)
	if err != nil {
		return domain.Enquiry{}, false, err
	}
	return existing, false, nil
}

func (r *Repo) Create(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error) {
	e = withDefaults(e)
	stored, err := scanEnquiry(r.pool.QueryRow(ctx, insertQuery+` RETURNING `+enquiryColumns, insertArgs(e)...))
	if err != nil {
		return domain.Enquiry{}, fmt.Errorf("create enquiry: %w", err)
	}
	return stored, nil
}

func (r *Repo) UpdateByID(ctx context.Context, id uuid.UUID, params UpdateParams) (domain.Enquiry, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Date != nil, "date", derefTime(params.Date)},
		{params.DisplayName != nil, "display_name", derefString(params.DisplayName)},
		{params.UserName.Set, "user_name", params.UserName.Value},
		{params.MobileNumber != nil, "mobile_number", derefString(params.MobileNumber)},
		{params.SecondaryMobileNumber.Set, "secondary_mobile_number", params.SecondaryMobileNumber.Value},
		{params.GST != nil, "gst", derefGST(params.GST)},
		{params.GSTStatus.Set, "gst_status", params.GSTStatus.Value},
		{params.BusinessType.Set, "business_type", params.BusinessType.Value},
		{params.BusinessNature.Set, "business_nature", params.BusinessNature.Value},
		{params.Staff != nil, "staff", derefOwner(params.Staff)},
		{params.StaffLocked != nil, "staff_locked", params.StaffLocked != nil && *params.StaffLocked},
		{params.Comments.Set, "comments", params.Comments.Value},
		{params.AdditionalComments.Set, "additional_comments", params.AdditionalComments.Value},
		{params.UpdatedBy != nil, "updated_by", params.UpdatedBy},
	}

	if params.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE enquiries SET %s
		WHERE id = $%d
		RETURNING %s`, strings.Join(setClauses, ", "), argIdx, enquiryColumns)

	e, err := scanEnquiry(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Enquiry{}, ErrNotFound
	}
	if err != nil {
		return domain.Enquiry{}, fmt.Errorf("update enquiry: %w", err)
	}
	return e, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enquiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOldUnassigned counts enquiries dated before cutoff that no human owns.
func (r *Repo) CountOldUnassigned(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM enquiries
		WHERE date < $1 AND (staff IS NULL OR trim(staff) = ANY($2) OR lower(trim(staff)) = ANY($3))`,
		cutoff, domain.UnclaimedStaffValues(), domain.SystemStaffKeys(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count old unassigned enquiries: %w", err)
	}
	return count, nil
}

// CountAssigned counts enquiries owned by a human, whatever their age.
func (r *Repo) CountAssigned(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM enquiries
		WHERE staff IS NOT NULL AND NOT (trim(staff) = ANY($1) OR lower(trim(staff)) = ANY($2))`,
		domain.UnclaimedStaffValues(), domain.SystemStaffKeys(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assigned enquiries: %w", err)
	}
	return count, nil
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE gst = 'Yes'),
			count(*) FILTER (WHERE gst = 'No')
		FROM enquiries`).Scan(&stats.Total, &stats.GSTYes, &stats.GSTNo)
	if err != nil {
		return Stats{}, fmt.Errorf("enquiry stats: %w", err)
	}

	if stats.TopComments, err = r.topLabels(ctx, "comments"); err != nil {
		return Stats{}, err
	}
	if stats.TopStaff, err = r.topLabels(ctx, "staff"); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// topLabels groups by a fixed column name; never pass user input as column.
func (r *Repo) topLabels(ctx context.Context, column string) ([]LabelCount, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %[1]s, count(*) AS n FROM enquiries
		WHERE %[1]s IS NOT NULL AND %[1]s <> ''
		GROUP BY %[1]s
		ORDER BY n DESC, %[1]s ASC
		LIMIT 5`, column))
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()

	out := make([]LabelCount, 0, 5)
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan top %s: %w", column, err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

const insertQuery = `
	INSERT INTO enquiries (
		id, display_name, user_name, mobile_number, secondary_mobile_number,
		gst, gst_status, business_type, business_nature, source,
		whatsapp_chat_id, whatsapp_message_id, whatsapp_sender_name, whatsapp_message_text, whatsapp_status,
		staff, staff_locked, comments, additional_comments, date, created_at, updated_at, updated_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21, $22)`

func insertArgs(e domain.Enquiry) []interface{} {
	return []interface{}{
		e.ID, e.DisplayName, e.UserName, e.MobileNumber, e.SecondaryMobileNumber,
		string(e.GST), e.GSTStatus, e.BusinessType, e.BusinessNature, string(e.Source),
		e.WhatsAppChatID, e.WhatsAppMessageID, e.WhatsAppSenderName, e.WhatsAppMessageText, e.WhatsAppStatus,
		e.Staff.String(), e.StaffLocked, e.Comments, e.AdditionalComments, e.Date, e.CreatedAt, e.UpdatedBy,
	}
}

func withDefaults(e domain.Enquiry) domain.Enquiry {
	now := time.Now().UTC()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.Date.IsZero() {
		e.Date = e.CreatedAt
	}
	return e
}

func scanEnquiry(row pgx.Row) (domain.Enquiry, error) {
	var (
		e      domain.Enquiry
		gst    string
		source string
		staff  *string
	)
	err := row.Scan(
		&e.ID, &e.DisplayName, &e.UserName, &e.MobileNumber, &e.SecondaryMobileNumber,
		&gst, &e.GSTStatus, &e.BusinessType, &e.BusinessNature, &source,
		&e.WhatsAppChatID, &e.WhatsAppMessageID, &e.WhatsAppSenderName, &e.WhatsAppMessageText, &e.WhatsAppStatus,
		&staff, &e.StaffLocked, &e.Comments, &e.AdditionalComments, &e.Date, &e.CreatedAt, &e.UpdatedAt, &e.UpdatedBy,
	)
	if err != nil {
		return domain.Enquiry{}, err
	}
	e.GST = domain.GSTFlag(gst)
	e.Source = domain.Source(source)
	e.Staff = domain.ParseOwner(derefString(staff))
	return e, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func derefGST(g *domain.GSTFlag) string {
	if g == nil {
		return ""
	}
	return string(*g)
}

func derefOwner(o *domain.Owner) string {
	if o == nil {
		return ""
	}
	return o.String()
}
