package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/kontor/internal/crypto"
	"github.com/mkarlsen/kontor/internal/domain"
)

const bankAccountColumns = `id, organization_id, bank_name, iban, bic,
	online_login, online_password, created_at, updated_at`

// BankAccountRepo implements domain.BankAccountRepository. Online banking
// credentials are encrypted into versioned envelopes before they hit the
// database and decrypted on the way out.
type BankAccountRepo struct {
	pool   *pgxpool.Pool
	cipher crypto.Cipher
}

func NewBankAccountRepo(pool *pgxpool.Pool, cipher crypto.Cipher) *BankAccountRepo {
	return &BankAccountRepo{pool: pool, cipher: cipher}
}

func (r *BankAccountRepo) scanBankAccount(row pgx.Row) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := row.Scan(
		&account.ID, &account.OrganizationID, &account.BankName, &account.IBAN,
		&account.BIC, &account.OnlineLogin, &account.OnlinePassword,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBankAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank account: %w", err)
	}

	if account.OnlineLogin, err = r.decryptField(account.OnlineLogin); err != nil {
		return nil, fmt.Errorf("failed to decrypt online login: %w", err)
	}
	if account.OnlinePassword, err = r.decryptField(account.OnlinePassword); err != nil {
		return nil, fmt.Errorf("failed to decrypt online password: %w", err)
	}
	return &account, nil
}

// decryptField tolerates rows written before encryption was enabled: values
// without the envelope tag pass through unchanged.
func (r *BankAccountRepo) decryptField(stored string) (string, error) {
	if !crypto.IsEncrypted(stored) {
		return stored, nil
	}
	return r.cipher.Decrypt(stored)
}

func (r *BankAccountRepo) GetByID(ctx context.Context, accountID uuid.UUID) (*domain.BankAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = $1`, accountID)
	return r.scanBankAccount(row)
}

func (r *BankAccountRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.BankAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bankAccountColumns+` FROM bank_accounts
		WHERE organization_id = $1 ORDER BY bank_name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		account, err := r.scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *BankAccountRepo) Create(ctx context.Context, account *domain.BankAccount) error {
	encLogin, err := r.cipher.Encrypt(account.OnlineLogin)
	if err != nil {
		return fmt.Errorf("failed to encrypt online login: %w", err)
	}
	encPassword, err := r.cipher.Encrypt(account.OnlinePassword)
	if err != nil {
		return fmt.Errorf("failed to encrypt online password: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO bank_accounts (organization_id, bank_name, iban, bic, online_login, online_password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, account.OrganizationID, account.BankName, account.IBAN, account.BIC, encLogin, encPassword)

	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

func (r *BankAccountRepo) Update(ctx context.Context, account *domain.BankAccount) error {
	encLogin, err := r.cipher.Encrypt(account.OnlineLogin)
	if err != nil {
		return fmt.Errorf("failed to encrypt online login: %w", err)
	}
	encPassword, err := r.cipher.Encrypt(account.OnlinePassword)
	if err != nil {
		return fmt.Errorf("failed to encrypt online password: %w", err)
	}

	// Re-encryption on update replaces the whole envelope.
	tag, err := r.pool.Exec(ctx, `
		UPDATE bank_accounts
		SET bank_name = $2, iban = $3, bic = $4, online_login = $5,
			online_password = $6, updated_at = NOW()
		WHERE id = $1
	`, account.ID, account.BankName, account.IBAN, account.BIC, encLogin, encPassword)
	if err != nil {
		return fmt.Errorf("failed to update bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBankAccountNotFound
	}
	return nil
}

func (r *BankAccountRepo) Delete(ctx context.Context, accountID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBankAccountNotFound
	}
	return nil
}
