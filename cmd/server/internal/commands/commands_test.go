package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gestor/internal/admin"
	"github.com/wolfeidau/gestor/internal/auth"
	"github.com/wolfeidau/gestor/internal/export"
	"github.com/wolfeidau/gestor/internal/identity"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthFlags_validate(t *testing.T) {
	tests := []struct {
		name    string
		flags   AuthFlags
		wantErr string
	}{
		{name: "secret", flags: AuthFlags{Secret: testSecret}},
		{name: "jwks", flags: AuthFlags{JWKSURL: "https://auth.example.com/.well-known/jwks.json"}},
		{name: "neither", flags: AuthFlags{}, wantErr: "one of"},
		{name: "both", flags: AuthFlags{Secret: testSecret, JWKSURL: "https://x"}, wantErr: "mutually exclusive"},
		{name: "short secret", flags: AuthFlags{Secret: "short"}, wantErr: "at least 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTokenCmd(t *testing.T) {
	subject := uuid.New()
	cmd := &TokenCmd{
		Subject:  subject.String(),
		Email:    "suporte@example.com",
		TTL:      time.Hour,
		Secret:   testSecret,
		Audience: "authenticated",
	}
	require.NoError(t, cmd.Validate())

	var out bytes.Buffer
	require.NoError(t, cmd.write(&out))

	flags := AuthFlags{Secret: testSecret, Audience: "authenticated"}
	verifier, err := flags.verifier()
	require.NoError(t, err)

	principal, err := verifier.Verify(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	require.Equal(t, subject, principal.UserID)
	require.Equal(t, "suporte@example.com", principal.Email)

	require.Error(t, (&TokenCmd{Subject: "nope", Secret: testSecret}).Validate())
	require.Error(t, (&TokenCmd{Subject: subject.String(), Secret: "short"}).Validate())
}

func TestExportCmd_Validate(t *testing.T) {
	org := uuid.NewString()

	tests := []struct {
		name    string
		cmd     ExportCmd
		wantErr bool
	}{
		{name: "stdout sql", cmd: ExportCmd{Org: org, Format: "sql", Out: "-"}},
		{name: "split csv", cmd: ExportCmd{Org: org, Format: "csv", Out: "dump", Split: true}},
		{name: "bad org", cmd: ExportCmd{Org: "x", Format: "sql"}, wantErr: true},
		{name: "split sql", cmd: ExportCmd{Org: org, Format: "sql", Out: "dump", Split: true}, wantErr: true},
		{name: "split stdout", cmd: ExportCmd{Org: org, Format: "csv", Out: "-", Split: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email: gestor@example.com\npassword: s3cret!\n"), 0o600))

	req, err := loadSeedFile(path)
	require.NoError(t, err)
	require.Equal(t, "gestor@example.com", req.Email)
	require.Equal(t, admin.DefaultSupportOrgName, req.OrganizationName)
	require.Equal(t, admin.DefaultSupportOrgCode, req.OrgCode)
	require.Equal(t, admin.DefaultSupportFullName, req.FullName)

	custom := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("organization_name: Suporte\norg_code: \"00001\"\nfull_name: Ana\nemail: ana@example.com\npassword: x\n"), 0o600))

	req, err = loadSeedFile(custom)
	require.NoError(t, err)
	require.Equal(t, "Suporte", req.OrganizationName)
	require.Equal(t, "00001", req.OrgCode)
	require.Equal(t, "Ana", req.FullName)

	missing := filepath.Join(dir, "missing.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("password: x\n"), 0o600))
	_, err = loadSeedFile(missing)
	require.ErrorIs(t, err, admin.ErrInvalidInput)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("email: [\n"), 0o600))
	_, err = loadSeedFile(broken)
	require.ErrorContains(t, err, "failed to parse seed file")
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()

	_, err := openStores(ctx, "postgres", &PostgresStoreFlags{})
	require.ErrorContains(t, err, "connection string is required")

	_, err = openStores(ctx, "dynamodb", &PostgresStoreFlags{})
	require.ErrorContains(t, err, "unknown store type")
}

func TestSeedAndExport(t *testing.T) {
	ctx := context.Background()

	st, err := openStores(ctx, "memory", &PostgresStoreFlags{})
	require.NoError(t, err)
	defer st.close()

	svc, err := st.service(identity.NewMemoryProvider(), export.Config{})
	require.NoError(t, err)

	req := admin.SeedRequest{Email: "gestor@example.com", Password: "s3cret!"}
	req.ApplyDefaults()

	seeded, err := svc.SeedSupportAccount(ctx, req)
	require.NoError(t, err)

	support := auth.WithPrincipal(ctx, &auth.Principal{UserID: seeded.UserID})

	t.Run("sql to stdout", func(t *testing.T) {
		res, err := svc.ExportOrganization(support, seeded.OrganizationID.String(), "sql")
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, writeExport(&out, res, "-", false))
		require.Contains(t, out.String(), "-- Export for organization: "+seeded.OrganizationID.String())
		require.Contains(t, out.String(), "INSERT INTO public.organizations")
		require.Contains(t, out.String(), "'55555'")
	})

	t.Run("csv to file", func(t *testing.T) {
		res, err := svc.ExportOrganization(support, seeded.OrganizationID.String(), "csv")
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "export.csv")
		require.NoError(t, writeExport(nil, res, path, false))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, res.Document(), string(data))
		require.Contains(t, string(data), "--- TABLE: organizations ---")
	})

	t.Run("csv split per table", func(t *testing.T) {
		res, err := svc.ExportOrganization(support, seeded.OrganizationID.String(), "csv")
		require.NoError(t, err)

		dir := filepath.Join(t.TempDir(), "dump")
		require.NoError(t, writeExport(nil, res, dir, true))

		for _, table := range []string{"organizations", "profiles", "user_roles", "hours_balance"} {
			data, err := os.ReadFile(filepath.Join(dir, table+".csv"))
			require.NoError(t, err, table)
			require.Equal(t, res.CSVByTable()[table]+"\n", string(data))
		}

		_, err = os.Stat(filepath.Join(dir, "documents.csv"))
		require.True(t, os.IsNotExist(err))
	})
}
