package speech

// RecognitionConfig mirrors the Speech-to-Text REST RecognitionConfig. Fields
// left zero are omitted from the request so the recognizer derives them from
// the audio header; sending a value that contradicts the header gets the
// whole request rejected with INVALID_ARGUMENT.
type RecognitionConfig struct {
	Encoding                            string `json:"encoding,omitempty"`
	SampleRateHertz                     int    `json:"sampleRateHertz,omitempty"`
	LanguageCode                        string `json:"languageCode"`
	EnableAutomaticPunctuation          bool   `json:"enableAutomaticPunctuation,omitempty"`
	Model                               string `json:"model,omitempty"`
	MaxAlternatives                     int    `json:"maxAlternatives,omitempty"`
	AudioChannelCount                   int    `json:"audioChannelCount,omitempty"`
	EnableSeparateRecognitionPerChannel bool   `json:"enableSeparateRecognitionPerChannel,omitempty"`
}

// RecognitionAudio carries either a gs:// reference or inline base64 content,
// never both.
type RecognitionAudio struct {
	URI     string `json:"uri,omitempty"`
	Content string `json:"content,omitempty"`
}

// RecognitionRequest is the invocation descriptor handed to the recognizer.
type RecognitionRequest struct {
	Config RecognitionConfig `json:"config"`
	Audio  RecognitionAudio  `json:"audio"`
}

// SpeechRecognitionAlternative is one ranked candidate transcription.
type SpeechRecognitionAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SpeechRecognitionResult is one recognized utterance.
type SpeechRecognitionResult struct {
	Alternatives []SpeechRecognitionAlternative `json:"alternatives"`
	ChannelTag   int                            `json:"channelTag,omitempty"`
}

// LongRunningRecognizeResponse is the payload of a completed operation.
type LongRunningRecognizeResponse struct {
	Results []SpeechRecognitionResult `json:"results"`
}

// operationStatus is the wire form of a long-running operation as returned
// by the operations endpoint.
type operationStatus struct {
	Name     string                        `json:"name"`
	Done     bool                          `json:"done"`
	Response *LongRunningRecognizeResponse `json:"response,omitempty"`
	Error    *statusError                  `json:"error,omitempty"`
}

// statusError is the google.rpc.Status error attached to a failed operation
// or returned as the body of a failed HTTP call.
type statusError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}
