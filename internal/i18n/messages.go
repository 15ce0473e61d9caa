// Package i18n holds the user-facing messages of the API in English and
// Indonesian.
package i18n

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"jewelshot/internal/domain"
)

// Message keys.
const (
	MsgTooFewImages       = "too_few_images"
	MsgTooManyImages      = "too_many_images"
	MsgAssetTooLarge      = "asset_too_large"
	MsgUnsupportedAsset   = "unsupported_asset"
	MsgUnknownPlacement   = "unknown_placement"
	MsgUnknownStyle       = "unknown_style"
	MsgMissingCredential  = "missing_credential"
	MsgSessionUnconfig    = "session_unconfigured"
	MsgNetwork            = "network_unavailable"
	MsgNoUsableResult     = "no_usable_result"
	MsgInvalidTransition  = "invalid_transition"
	MsgNotFound           = "not_found"
	MsgInternal           = "internal"
	MsgConfirmEmail       = "confirm_email"
	MsgResetSent          = "reset_sent"
	MsgSignedOut          = "signed_out"
	MsgInvalidPayload     = "invalid_payload"
	MsgRateLimited        = "rate_limited"
	MsgReferencesRejected = "references_rejected"
)

var supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(supported)

var entries = map[string][2]string{
	MsgTooFewImages:       {"Please upload at least %d reference photos of the piece.", "Unggah minimal %d foto referensi perhiasan."},
	MsgTooManyImages:      {"You can upload at most %d reference photos.", "Maksimal %d foto referensi yang dapat diunggah."},
	MsgAssetTooLarge:      {"Each photo must be %d MB or smaller.", "Setiap foto maksimal berukuran %d MB."},
	MsgUnsupportedAsset:   {"That file is not a supported image (PNG, JPEG, GIF or WebP).", "Berkas tersebut bukan gambar yang didukung (PNG, JPEG, GIF, atau WebP)."},
	MsgUnknownPlacement:   {"Unknown jewelry type.", "Jenis perhiasan tidak dikenal."},
	MsgUnknownStyle:       {"Unknown background style.", "Gaya latar tidak dikenal."},
	MsgMissingCredential:  {"Image generation is not configured. Set GEMINI_API_KEY and restart the server.", "Pembuatan gambar belum dikonfigurasi. Atur GEMINI_API_KEY lalu jalankan ulang server."},
	MsgSessionUnconfig:    {"Sign-in is not configured. Set SUPABASE_URL and SUPABASE_ANON_KEY.", "Login belum dikonfigurasi. Atur SUPABASE_URL dan SUPABASE_ANON_KEY."},
	MsgNetwork:            {"Could not reach the image service. Check your connection and try again.", "Layanan gambar tidak dapat dihubungi. Periksa koneksi Anda lalu coba lagi."},
	MsgNoUsableResult:     {"The model returned no usable images. Try clearer reference photos or a different directive.", "Model tidak menghasilkan gambar yang layak. Coba foto referensi yang lebih jelas atau arahan lain."},
	MsgInvalidTransition:  {"That action is not available on this screen.", "Tindakan tersebut tidak tersedia di layar ini."},
	MsgNotFound:           {"Not found.", "Tidak ditemukan."},
	MsgInternal:           {"Something went wrong. Please try again.", "Terjadi kesalahan. Silakan coba lagi."},
	MsgConfirmEmail:       {"Check your email to confirm your account.", "Periksa email Anda untuk mengonfirmasi akun."},
	MsgResetSent:          {"Password reset email sent.", "Email pengaturan ulang kata sandi telah dikirim."},
	MsgSignedOut:          {"You have been signed out.", "Anda telah keluar."},
	MsgInvalidPayload:     {"The request is invalid.", "Permintaan tidak valid."},
	MsgRateLimited:        {"Too many photoshoots. Please wait a minute.", "Terlalu banyak sesi foto. Tunggu sebentar."},
	MsgReferencesRejected: {"%d file(s) were skipped.", "%d berkas dilewati."},
}

var cat = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msgs := range entries {
		_ = b.SetString(language.English, key, msgs[0])
		_ = b.SetString(language.Indonesian, key, msgs[1])
	}
	return b
}()

// Locale picks the supported locale closest to the given tags, such as an
// Accept-Language header or a bare "id".
func Locale(preferences ...string) string {
	tags := make([]language.Tag, 0, len(preferences))
	for _, p := range preferences {
		if parsed, _, err := language.ParseAcceptLanguage(p); err == nil {
			tags = append(tags, parsed...)
		}
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "en"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Sprintf renders key for locale.
func Sprintf(locale, key string, args ...any) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	_, idx, _ := matcher.Match(tag)
	p := message.NewPrinter(supported[idx], message.Catalog(cat))
	return p.Sprintf(key, args...)
}

// KeyFor returns the message key for err.
func KeyFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrTooFewImages):
		return MsgTooFewImages
	case errors.Is(err, domain.ErrTooManyImages):
		return MsgTooManyImages
	case errors.Is(err, domain.ErrAssetTooLarge):
		return MsgAssetTooLarge
	case errors.Is(err, domain.ErrUnsupportedAsset):
		return MsgUnsupportedAsset
	case errors.Is(err, domain.ErrUnknownPlacement):
		return MsgUnknownPlacement
	case errors.Is(err, domain.ErrUnknownStyle):
		return MsgUnknownStyle
	case errors.Is(err, domain.ErrMissingCredential):
		return MsgMissingCredential
	case errors.Is(err, domain.ErrSessionUnconfigured):
		return MsgSessionUnconfig
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return MsgNetwork
	case errors.Is(err, domain.ErrNoUsableResult):
		return MsgNoUsableResult
	case errors.Is(err, domain.ErrInvalidTransition):
		return MsgInvalidTransition
	case errors.Is(err, domain.ErrNotFound):
		return MsgNotFound
	default:
		return MsgInternal
	}
}

// ErrorMessage renders err for locale. Provider auth messages are returned
// verbatim.
func ErrorMessage(locale string, err error) string {
	if err == nil {
		return ""
	}
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}
	key := KeyFor(err)
	switch key {
	case MsgTooFewImages:
		return Sprintf(locale, key, domain.MinImages)
	case MsgTooManyImages:
		return Sprintf(locale, key, domain.MaxImages)
	case MsgAssetTooLarge:
		return Sprintf(locale, key, domain.MaxAssetBytes>>20)
	}
	return Sprintf(locale, key)
}
