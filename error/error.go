package error

import "errors"

var (
	ErrScriptNotLoaded   = errors.New("script is not loaded")
	ErrEngineNotAttached = errors.New("engine is not attached")
	ErrNoEvaluator       = errors.New("expression evaluator not available")
	ErrSessionClosed     = errors.New("debug session is closed")
)
