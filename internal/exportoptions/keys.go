package exportoptions

// Export document keys understood by the export tool.
const (
	MethodKey                             = "method"
	UploadSymbolsKey                      = "uploadSymbols"
	UploadBitcodeKey                      = "uploadBitcode"
	TeamIDKey                             = "teamID"
	ManifestKey                           = "manifest"
	ManifestAppURLKey                     = "appURL"
	ManifestDisplayImageURLKey            = "displayImageURL"
	ManifestFullSizeImageURLKey           = "fullSizeImageURL"
	ManifestAssetPackManifestURLKey       = "assetPackManifestURL"
	OnDemandResourcesAssetPacksBaseURLKey = "onDemandResourcesAssetPacksBaseURL"
)

// MethodAppStore is the only method for which symbol and bitcode upload flags apply.
const MethodAppStore = "app-store"

// Defaults used when the user supplies no export options at all.
const (
	DefaultMethod         = MethodAppStore
	DefaultIncludeSymbols = true
	DefaultIncludeBitcode = false
)

// manifestURLKeys are the URL leaves nested under ManifestKey.
var manifestURLKeys = []string{
	ManifestAppURLKey,
	ManifestDisplayImageURLKey,
	ManifestFullSizeImageURLKey,
	ManifestAssetPackManifestURLKey,
}
