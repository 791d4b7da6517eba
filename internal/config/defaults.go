package config

func DefaultGeneral() General {
	return General{Repeats: 1, Seed: 1}
}

func DefaultEnv() EnvConfig {
	return EnvConfig{Size: 10, Arms: 4, Actions: 4}
}

// DefaultPooling matches the reference pairing: 2048 output columns with 40
// active, so encodings live in [0, 2048).
func DefaultPooling() PoolingConfig {
	return PoolingConfig{
		InputSize:     100,
		InputSparsity: 0.1,
		Columns:       2048,
		ActiveColumns: 40,
		BoostStrength: 1.0,
	}
}

func DefaultEps() EpsConfig {
	return EpsConfig{E: 0.1}
}

func DefaultQ() QConfig {
	return QConfig{LearningRate: 0.1, Discount: 0.9}
}
