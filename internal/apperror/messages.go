package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeGasEstimationFailed:      "Gas price fetch failed",
	CodeContractCallFailed:       "Smart contract call failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// CEX (Binance) errors
	CodeBinanceConnectionFailed: "Failed to connect to Binance API",
	CodeBinanceAPIError:         "Binance API error",
	CodeOrderbookFetchFailed:    "Failed to fetch orderbook",
	CodeInvalidOrderbook:        "Invalid orderbook data",

	// DEX (Uniswap) errors
	CodePoolStateFetchFailed: "Failed to fetch pool state",
	CodeInvalidPoolState:     "Invalid pool state snapshot",
	CodeInvalidSegments:      "Malformed liquidity segments",

	// Solver/evaluator errors
	CodeInvalidPrice:       "Price must be positive",
	CodeInvalidFeeRate:     "Fee rate must be in [0, 1)",
	CodeInvalidLiquidity:   "Liquidity must be positive",
	CodePrecisionLoss:      "Arithmetic precision loss",
	CodeEvaluationFailed:   "Opportunity evaluation failed",
	CodeInvalidGasSettings: "Invalid gas settings",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
