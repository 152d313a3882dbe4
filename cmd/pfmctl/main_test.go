package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260331120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>021000021
<ACCTID>998877
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260301120000[0:GMT]
<DTEND>20260331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260305120000[0:GMT]
<TRNAMT>-42.10
<FITID>F-002
<NAME>CORNER GROCERY
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "ledger.db"))
	t.Setenv("DISPLAY_CURRENCY", "USD")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestMigrateAndBalance(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "balance", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "ACCOUNT")
	assert.Contains(t, out, "BALANCE")
}

func TestBalanceRequiresUser(t *testing.T) {
	setupEnv(t)
	t.Setenv("CLI_USER", "")

	_, err := run(t, "balance")
	assert.ErrorContains(t, err, "--user")
}

func TestImportOFXDryRun(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "march.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0o600))

	out, err := run(t, "import-ofx", "--user", "u1", "--account", "acc-1",
		"--income-category", "cat-in", "--expense-category", "cat-out", "--dry-run", path)

	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-05")
	assert.Contains(t, out, "EXPENSE")
	assert.Contains(t, out, "$42.10")
	assert.Contains(t, out, "dry run")
}
