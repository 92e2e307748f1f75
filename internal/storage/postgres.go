package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/agribrazil/leadchat/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "error connecting to the database")
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, errors.Wrap(err, "error initializing database schema")
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return errors.Wrap(err, "error reading migrations file")
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return errors.Wrap(err, "error executing migrations")
	}

	return nil
}

func (s *PostgresStorage) CreateConversation(ctx context.Context, sessionID string) error {
	query := `
		INSERT INTO conversations (session_id, status)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, sessionID, models.ConversationActive); err != nil {
		return errors.Wrap(err, "error creating conversation")
	}

	return nil
}

func (s *PostgresStorage) GetConversationBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	query := `
		SELECT id, session_id, lead_id, user_id, status, created_at, updated_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	conv := &models.Conversation{}
	var status string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&conv.ID,
		&conv.SessionID,
		&conv.LeadID,
		&conv.UserID,
		&status,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "error querying conversation")
	}

	conv.Status = models.ConversationStatus(status)
	return conv, nil
}

func (s *PostgresStorage) UpdateConversationStatus(ctx context.Context, id int64, status models.ConversationStatus) error {
	if !status.Valid() {
		return errors.Errorf("unrecognized conversation status %q", status)
	}

	query := `
		UPDATE conversations
		SET status = $1, updated_at = now()
		WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return errors.Wrap(err, "error updating conversation status")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error getting rows affected")
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	if !msg.Role.Valid() {
		return errors.Errorf("unrecognized message role %q", msg.Role)
	}

	query := `
		INSERT INTO messages (conversation_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		msg.ConversationID,
		msg.Role,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return errors.Wrap(err, "error creating message")
	}

	return nil
}

func (s *PostgresStorage) GetMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "error querying messages")
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		var role string
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning message")
		}
		if msg.Role, err = models.ParseRole(role); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating messages")
	}

	return messages, nil
}

func (s *PostgresStorage) CreateLead(ctx context.Context, lead *models.Lead) error {
	query := `
		INSERT INTO leads (name, email, phone, project_type, budget, timeline, message, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.ProjectType,
		lead.Budget,
		lead.Timeline,
		lead.Message,
		lead.Source,
		lead.Status,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)

	if err != nil {
		return errors.Wrap(err, "error creating lead")
	}

	return nil
}

func (s *PostgresStorage) ListLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	query := `
		SELECT id, name, email, phone, project_type, budget, timeline, message, source, status, created_at, updated_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error querying leads")
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead := &models.Lead{}
		err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.ProjectType,
			&lead.Budget,
			&lead.Timeline,
			&lead.Message,
			&lead.Source,
			&lead.Status,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning lead")
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating leads")
	}

	return leads, nil
}

func (s *PostgresStorage) UpdateLeadStatus(ctx context.Context, id int64, status models.LeadStatus) error {
	if !status.Valid() {
		return errors.Errorf("unrecognized lead status %q", status)
	}

	query := `
		UPDATE leads
		SET status = $1, updated_at = now()
		WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return errors.Wrap(err, "error updating lead status")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error getting rows affected")
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
