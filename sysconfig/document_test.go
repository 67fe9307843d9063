package sysconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `# Spinnaker system configuration.
# Edit and run reconfigure to apply.

SPINNAKER_AWS_ENABLED=false
SPINNAKER_AWS_DEFAULT_REGION=us-west-2

SPINNAKER_GCE_ENABLED=true
SPINNAKER_GCE_DEFAULT_REGION=us-central1

# Unrelated settings below must survive rewrites untouched.
SPINNAKER_DEFAULT_STORAGE_BUCKET=my-bucket
not a key value line at all
`

func TestParseRoundTrip(t *testing.T) {
	doc := Parse(sampleConfig)
	if doc.String() != sampleConfig {
		t.Errorf("round trip changed contents:\n%s", doc.String())
	}
}

func TestDocumentGetSet(t *testing.T) {
	doc := Parse(sampleConfig)

	if v, ok := doc.Get("SPINNAKER_AWS_ENABLED"); !ok || v != "false" {
		t.Errorf("Get(SPINNAKER_AWS_ENABLED) = %q, %v", v, ok)
	}
	if _, ok := doc.Get("NO_SUCH_KEY"); ok {
		t.Error("Get of missing key reported ok")
	}

	if !doc.Set("SPINNAKER_AWS_ENABLED", "true") {
		t.Error("Set of existing key reported no match")
	}
	if v, _ := doc.Get("SPINNAKER_AWS_ENABLED"); v != "true" {
		t.Errorf("value after Set = %q", v)
	}
	if doc.Set("NO_SUCH_KEY", "x") {
		t.Error("Set of missing key reported a match")
	}
}

func TestApplyProviderOptions(t *testing.T) {
	cases := []struct {
		provider  Provider
		region    string
		awsOn     string
		gceOn     string
		awsRegion string
		gceRegion string
	}{
		{ProviderAmazon, "us-east-1", "true", "false", "us-east-1", ""},
		{ProviderGoogle, "europe-west1", "false", "true", "", "europe-west1"},
		{ProviderNone, "", "false", "false", "", ""},
		{ProviderNone, "none", "false", "false", "none", "none"},
	}

	for _, c := range cases {
		doc := Parse(sampleConfig)
		if err := ApplyProviderOptions(doc, Options{Provider: c.provider, DefaultRegion: c.region}); err != nil {
			t.Fatalf("%s: %v", c.provider, err)
		}
		check := func(key, want string) {
			if v, _ := doc.Get(key); v != want {
				t.Errorf("%s: %s = %q, want %q", c.provider, key, v, want)
			}
		}
		check(KeyAWSEnabled, c.awsOn)
		check(KeyGCEEnabled, c.gceOn)
		check(KeyAWSDefaultRegion, c.awsRegion)
		check(KeyGCEDefaultRegion, c.gceRegion)
	}
}

func TestApplyProviderOptions_UnknownProvider(t *testing.T) {
	if err := ApplyProviderOptions(Parse(""), Options{Provider: "azure"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestApplyProviderOptions_PreservesOtherLines(t *testing.T) {
	doc := Parse(sampleConfig)
	if err := ApplyProviderOptions(doc, Options{Provider: ProviderAmazon, DefaultRegion: "us-east-1"}); err != nil {
		t.Fatal(err)
	}
	out := doc.String()
	for _, verbatim := range []string{
		"# Spinnaker system configuration.",
		"SPINNAKER_DEFAULT_STORAGE_BUCKET=my-bucket",
		"not a key value line at all",
	} {
		if !strings.Contains(out, verbatim) {
			t.Errorf("rewrite dropped line %q", verbatim)
		}
	}
}

func TestApplyProviderOptions_AppendsMissingKeys(t *testing.T) {
	doc := Parse("# empty file\n")
	if err := ApplyProviderOptions(doc, Options{Provider: ProviderGoogle, DefaultRegion: "us-central1"}); err != nil {
		t.Fatal(err)
	}
	if v, ok := doc.Get(KeyGCEDefaultRegion); !ok || v != "us-central1" {
		t.Errorf("missing key was not appended, got %q, %v", v, ok)
	}
}

func TestRewrite_BacksUpAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spinnaker_config.cfg")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Rewrite(path, Options{Provider: ProviderAmazon, DefaultRegion: "us-east-1"}); err != nil {
		t.Fatal(err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != sampleConfig {
		t.Error("backup does not match original contents")
	}

	updated, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := updated.Get(KeyAWSEnabled); v != "true" {
		t.Errorf("rewritten value = %q, want true", v)
	}
}

func TestRewrite_MissingFile(t *testing.T) {
	if err := Rewrite(filepath.Join(t.TempDir(), "absent.cfg"), Options{Provider: ProviderNone}); err == nil {
		t.Error("expected error for missing file")
	}
}
