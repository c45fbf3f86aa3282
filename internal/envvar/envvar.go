package envvar

const (
	// VocalisEnv is the environment variable used to determine the environment
	VocalisEnv = "VOCALIS_ENV"

	// VocalisConfig is the environment variable used to locate the config file
	VocalisConfig = "VOCALIS_CONFIG"

	// AssetsDir is the environment variable used to determine the primary assets directory
	AssetsDir = "TTS_ASSETS_DIR"

	// DefaultModel is the environment variable used to select the default backend
	DefaultModel = "TTS_DEFAULT_MODEL"

	// ModelFile is the environment variable used to override the kokoro model file name
	ModelFile = "TTS_MODEL_FILE"

	// SupertonicSteps is the environment variable used to set the supertonic denoising steps
	SupertonicSteps = "TTS_SUPERTONIC_STEPS"

	// HTTPPort is the environment variable used to determine the HTTP port
	HTTPPort = "TTS_HTTP_PORT"

	// GRPCPort is the environment variable used to determine the gRPC port
	GRPCPort = "TTS_GRPC_PORT"

	// ONNXRuntimeLibPath is the environment variable pointing at the onnxruntime shared library
	ONNXRuntimeLibPath = "ONNXRUNTIME_LIB_PATH"
)
