package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Client identification ─────────────────────────────────────────
	ErrClientIDRequired ErrCode = "CLIENT_ID_REQUIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Catalog / quiz selection ──────────────────────────────────────
	ErrQuizNotFound      ErrCode = "QUIZ_NOT_FOUND"
	ErrNoQuizSelected    ErrCode = "NO_QUIZ_SELECTED"
	ErrDataUnavailable   ErrCode = "DATA_UNAVAILABLE"
	ErrInvalidEntryToken ErrCode = "INVALID_ENTRY_TOKEN"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrNoActiveSession  ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionNotActive ErrCode = "SESSION_NOT_ACTIVE"
	ErrInvalidIndex     ErrCode = "INVALID_QUESTION_INDEX"
	ErrUnknownOption    ErrCode = "UNKNOWN_OPTION"
	ErrIncomplete       ErrCode = "INCOMPLETE_SUBMISSION"
	ErrViolationLimit   ErrCode = "VIOLATION_LIMIT_REACHED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Client identification ─────────────────────────────────────────
	case ErrClientIDRequired:
		return "Identitas klien diperlukan."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Catalog / quiz selection ──────────────────────────────────────
	case ErrQuizNotFound:
		return "Ujian tidak ditemukan."
	case ErrNoQuizSelected:
		return "Tidak ada ujian yang dipilih. Kembali ke Dashboard."
	case ErrDataUnavailable:
		return "Gagal memuat data ujian."
	case ErrInvalidEntryToken:
		return "Token masuk ujian tidak valid."
	case ErrNoQuestions:
		return "Ujian ini tidak memiliki pertanyaan."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrNoActiveSession:
		return "Tidak ada sesi ujian yang sedang berlangsung."
	case ErrSessionNotActive:
		return "Sesi ujian sudah berakhir."
	case ErrInvalidIndex:
		return "Nomor soal tidak valid."
	case ErrUnknownOption:
		return "Pilihan jawaban tidak dikenali."
	case ErrIncomplete:
		return "Masih ada soal yang belum dijawab. Mohon lengkapi semua jawaban sebelum mengumpulkan."
	case ErrViolationLimit:
		return "Anda telah melanggar batas toleransi. Ujian akan direset dari awal."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
