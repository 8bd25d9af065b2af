package config

type WorkerKeyStruct struct {
	PersistAnswersQueue   string
	PersistTelemetryQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:   "persist_answers_queue",
	PersistTelemetryQueue: "persist_telemetry_queue",
}
