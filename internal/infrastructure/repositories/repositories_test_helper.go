package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createPaymentRequestTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_requests (
		id TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		face_amount_usd TEXT NOT NULL,
		description TEXT,
		network TEXT DEFAULT '',
		symbol TEXT DEFAULT '',
		asset_kind TEXT DEFAULT '',
		contract_or_mint TEXT DEFAULT '',
		decimals INTEGER DEFAULT 0,
		destination_address TEXT DEFAULT '',
		expected_amount TEXT DEFAULT '',
		status TEXT NOT NULL,
		matched_tx_ref TEXT,
		quoted_at DATETIME,
		expires_at DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWebhookDeliveryTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE webhook_deliveries (
		id TEXT PRIMARY KEY,
		payment_id TEXT NOT NULL,
		target_url TEXT NOT NULL,
		event TEXT NOT NULL,
		http_status INTEGER,
		succeeded BOOLEAN NOT NULL,
		attempt INTEGER NOT NULL,
		created_at DATETIME
	);`)
}

func createMerchantTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE merchants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		webhook_url TEXT,
		webhook_secret TEXT,
		is_active BOOLEAN,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		network TEXT NOT NULL,
		currency TEXT NOT NULL,
		address TEXT NOT NULL,
		is_active BOOLEAN,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
