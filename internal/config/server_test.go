package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var c ServerConfig
	c.SetDefaults()
	if c.Port != 8080 {
		t.Fatalf("port = %d; want 8080", c.Port)
	}
	if c.MetricsAddr != ":8080" {
		t.Fatalf("metrics addr = %q; want :8080", c.MetricsAddr)
	}
	if c.RequestTimeout != 30*time.Second {
		t.Fatalf("request timeout = %v; want 30s", c.RequestTimeout)
	}
	if c.ZabbixURL == "" {
		t.Fatalf("zabbix url default missing")
	}
}

func TestApplyEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ZABBIX_URL", "http://zbx.example/api_jsonrpc.php")
	t.Setenv("ZABBIX_USER", "svc")
	t.Setenv("ZABBIX_PASSWORD", "hunter2")
	t.Setenv("REQUEST_TIMEOUT", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	var c ServerConfig
	c.SetDefaults()
	c.ApplyEnv()
	if c.Port != 9090 {
		t.Fatalf("port = %d; want 9090", c.Port)
	}
	if c.ZabbixURL != "http://zbx.example/api_jsonrpc.php" || c.ZabbixUser != "svc" || c.ZabbixPassword != "hunter2" {
		t.Fatalf("zabbix settings not applied: %+v", c)
	}
	if c.RequestTimeout != 2500*time.Millisecond {
		t.Fatalf("request timeout = %v; want 2.5s", c.RequestTimeout)
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("allowed origins = %v", c.AllowedOrigins)
	}
}

func TestLoadFileThenEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := []byte("port: 7070\nzabbix_url: http://file.example/api_jsonrpc.php\nzabbix_user: fileuser\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ZABBIX_USER", "envuser")

	var c ServerConfig
	c.SetDefaults()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	c.ApplyEnv()

	if c.Port != 7070 {
		t.Fatalf("port = %d; want 7070 from file", c.Port)
	}
	if c.ZabbixURL != "http://file.example/api_jsonrpc.php" {
		t.Fatalf("zabbix url = %q; want file value", c.ZabbixURL)
	}
	if c.ZabbixUser != "envuser" {
		t.Fatalf("zabbix user = %q; env must override file", c.ZabbixUser)
	}
}
