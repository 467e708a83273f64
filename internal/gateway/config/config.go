package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	LLM       LLMConfig
	Workspace WorkspaceConfig
	Archive   ArchiveConfig
}

type LLMConfig struct {
	APIKey         string
	InterviewModel string
	SynthesisModel string
	Temperature    float32
	// Fake selects the offline model. In the local environment it is forced
	// on when no API key is set; elsewhere a missing key is an error.
	Fake bool
	// Trace logs every prompt and reply. Defaults to on in local.
	Trace bool
}

type WorkspaceConfig struct {
	Max      int
	SeedPath string
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env, command-line flags and the environment. Environment
// values win over flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse is Load without .env handling, for an explicit flag set.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	port := fs.String("port", ":8081", "server port")
	seed := fs.String("seed", "", "YAML seed for new workspaces")
	fake := fs.Bool("fake-llm", false, "use the offline model")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		*port = envPort
	}
	*port = normalizePort(*port)

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	llmCfg, err := loadLLMConfig(*fake, env)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:      *port,
		Env:       env,
		LLM:       llmCfg,
		Workspace: loadWorkspaceConfig(*seed),
		Archive:   loadArchiveConfig(env),
	}, nil
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func loadLLMConfig(fakeFlag bool, env string) (LLMConfig, error) {
	key := firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")))
	temp, _ := strconv.ParseFloat(strings.TrimSpace(os.Getenv("GEMINI_TEMPERATURE")), 32)
	local := strings.EqualFold(env, "local")
	fake := fakeFlag || envBool("LLM_FAKE", false)
	if key == "" && !fake {
		if !local {
			return LLMConfig{}, fmt.Errorf("GEMINI_API_KEY is required in %s (set LLM_FAKE=1 to run offline)", env)
		}
		fake = true
	}
	return LLMConfig{
		APIKey:         key,
		InterviewModel: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_INTERVIEW_MODEL")), "gemini-3-flash-preview"),
		SynthesisModel: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_SYNTHESIS_MODEL")), "gemini-3-pro-preview"),
		Temperature:    float32(temp),
		Fake:           fake,
		Trace:          envBool("LLM_TRACE", local),
	}, nil
}

func loadWorkspaceConfig(seedFlag string) WorkspaceConfig {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("WORKSPACE_MAX")))
	if err != nil || n <= 0 {
		n = 256
	}
	return WorkspaceConfig{
		Max:      n,
		SeedPath: firstNonEmpty(strings.TrimSpace(os.Getenv("SEED_PATH")), strings.TrimSpace(seedFlag)),
	}
}

func loadArchiveConfig(env string) ArchiveConfig {
	endpoint := resolveArchiveEndpoint(env)
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_ARCHIVE_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_ARCHIVE_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_ARCHIVE_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_ARCHIVE_BUCKET")), "orgdiag-reports"),
		UseSSL:    resolveArchiveUseSSL(env),
	}
}

func resolveArchiveEndpoint(env string) string {
	endpoint := strings.TrimSpace(os.Getenv("REPORT_ARCHIVE_ENDPOINT"))
	if endpoint == "" && strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("REPORT_ARCHIVE_MINIO_ENDPOINT"))
	}
	return endpoint
}

func resolveArchiveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return envBool("REPORT_ARCHIVE_USE_SSL", true)
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
