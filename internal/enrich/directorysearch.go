package enrich

import "github.com/repliq/repliq/internal/polyval"

// binaryAttributes is the closed set of known-binary directory attributes
// that the search-engine variant blanks out, since a full-text index has
// no use for opaque binary payloads and indexing them wastes space.
var binaryAttributes = []string{
	"msExchMailboxGuid",
	"msExchMailboxSecurityDescriptor",
	"objectGUID",
	"objectSid",
	"userParameters",
	"userCertificate",
	"msExchArchiveGUID",
	"msExchBlockedSendersHash",
	"msExchSafeSendersHash",
	"securityProtocol",
	"terminalServer",
	"mSMQDigests",
	"mSMQSignCertificates",
	"msExchSafeRecipientsHash",
	"msExchDisabledArchiveGUID",
	"sIDHistory",
	"replicationSignature",
	"msExchMasterAccountSid",
	"logonHours",
	"thumbnailPhoto",
}

// variantAttributes is the closed set of directory attributes whose values
// are ambiguously typed by the directory server; the search-engine variant
// prefixes their values with an explicit "[string] " so the index field
// mapping stays stable. The values must be strings (or sequences of
// strings): any other kind panics with polyval.ErrKindMismatch.
var variantAttributes = []string{
	"extensionAttribute1", "extensionAttribute2", "extensionAttribute3",
	"extensionAttribute4", "extensionAttribute5", "extensionAttribute6",
	"extensionAttribute7", "extensionAttribute8", "extensionAttribute9",
	"extensionAttribute10", "extensionAttribute11", "extensionAttribute12",
	"extensionAttribute13", "extensionAttribute14", "extensionAttribute15",
}

// DirectorySearch wraps Directory, additionally sanitizing the envelope's
// source sub-tree for indexing by a full-text search engine.
type DirectorySearch struct {
	Directory
}

// Enrich runs the base directory enrichment, then blanks binaryAttributes
// and prefixes variantAttributes within the envelope's source map. Both
// substitutions apply element-wise when the attribute's value is a
// sequence, since a directory attribute may be multi-valued.
func (e DirectorySearch) Enrich(source polyval.Value) polyval.Value {
	env := e.Directory.Enrich(source)
	sanitized := polyval.DeepCopy(env.Get(FieldSource))

	for _, attr := range binaryAttributes {
		blankAttribute(sanitized, attr)
	}
	for _, attr := range variantAttributes {
		prefixAttribute(sanitized, attr, "[string] ")
	}

	env.Set(FieldSource, sanitized)
	return env
}

// EnrichBatch applies Enrich to every record.
func (e DirectorySearch) EnrichBatch(batch []polyval.Value) []polyval.Value {
	out := make([]polyval.Value, len(batch))
	for i, rec := range batch {
		out[i] = e.Enrich(rec)
	}
	return out
}

func blankAttribute(source polyval.Value, attr string) {
	v, ok := source.Lookup(attr)
	if !ok {
		return
	}
	if v.Is(polyval.KindSequence) {
		items := v.AsSequence()
		blanked := make([]polyval.Value, len(items))
		for i := range items {
			blanked[i] = polyval.String("")
		}
		source.Set(attr, polyval.Sequence(blanked))
		return
	}
	source.Set(attr, polyval.String(""))
}

func prefixAttribute(source polyval.Value, attr, prefix string) {
	v, ok := source.Lookup(attr)
	if !ok {
		return
	}
	if v.Is(polyval.KindSequence) {
		items := v.AsSequence()
		prefixed := make([]polyval.Value, len(items))
		for i, item := range items {
			prefixed[i] = polyval.String(prefix + item.AsString())
		}
		source.Set(attr, polyval.Sequence(prefixed))
		return
	}
	source.Set(attr, polyval.String(prefix+v.AsString()))
}
