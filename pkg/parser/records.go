package parser

import "reflect"

// StringLiteralInfo locates one string literal inside the literal data
// section. Offset is relative to Header.StringLiteralDataOffset.
type StringLiteralInfo struct {
	Length uint32 `json:"length"`
	Offset uint32 `json:"offset"`
}

type ImageDefinition struct {
	NameIndex            int32  `json:"name_index"`
	AssemblyIndex        int32  `json:"assembly_index"`
	TypeStart            int32  `json:"type_start"`
	TypeCount            uint32 `json:"type_count"`
	ExportedTypeStart    int32  `json:"exported_type_start"`
	ExportedTypeCount    uint32 `json:"exported_type_count"`
	EntryPointIndex      int32  `json:"entry_point_index"`
	Token                uint32 `json:"token"`
	CustomAttributeStart int32  `json:"custom_attribute_start"`
	CustomAttributeCount uint32 `json:"custom_attribute_count"`
}

type AssemblyNameDefinition struct {
	NameIndex      int32   `json:"name_index"`
	CultureIndex   int32   `json:"culture_index"`
	HashValueIndex int32   `json:"hash_value_index"`
	PublicKeyIndex int32   `json:"public_key_index"`
	HashAlg        uint32  `json:"hash_alg"`
	HashLen        int32   `json:"hash_len"`
	Flags          uint32  `json:"flags"`
	Major          int32   `json:"major"`
	Minor          int32   `json:"minor"`
	Build          int32   `json:"build"`
	Revision       int32   `json:"revision"`
	PublicKeyToken [8]byte `json:"public_key_token"`
}

type AssemblyDefinition struct {
	ImageIndex              int32                  `json:"image_index"`
	Token                   uint32                 `json:"token"`
	ReferencedAssemblyStart int32                  `json:"referenced_assembly_start"`
	ReferencedAssemblyCount int32                  `json:"referenced_assembly_count"`
	Aname                   AssemblyNameDefinition `json:"aname"`
}

type TypeDefinition struct {
	NameIndex             int32  `json:"name_index"`
	NamespaceIndex        int32  `json:"namespace_index"`
	ByvalTypeIndex        int32  `json:"byval_type_index"`
	ByrefTypeIndex        int32  `json:"byref_type_index"`
	DeclaringTypeIndex    int32  `json:"declaring_type_index"`
	ParentIndex           int32  `json:"parent_index"`
	ElementTypeIndex      int32  `json:"element_type_index"`
	RGCTXStartIndex       int32  `json:"rgctx_start_index"`
	RGCTXCount            int32  `json:"rgctx_count"`
	GenericContainerIndex int32  `json:"generic_container_index"`
	Flags                 uint32 `json:"flags"`
	FieldStart            int32  `json:"field_start"`
	MethodStart           int32  `json:"method_start"`
	EventStart            int32  `json:"event_start"`
	PropertyStart         int32  `json:"property_start"`
	NestedTypesStart      int32  `json:"nested_types_start"`
	InterfacesStart       int32  `json:"interfaces_start"`
	VTableStart           int32  `json:"vtable_start"`
	InterfaceOffsetsStart int32  `json:"interface_offsets_start"`
	MethodCount           uint16 `json:"method_count"`
	PropertyCount         uint16 `json:"property_count"`
	FieldCount            uint16 `json:"field_count"`
	EventCount            uint16 `json:"event_count"`
	NestedTypeCount       uint16 `json:"nested_type_count"`
	VTableCount           uint16 `json:"vtable_count"`
	InterfacesCount       uint16 `json:"interfaces_count"`
	InterfaceOffsetsCount uint16 `json:"interface_offsets_count"`
	Bitfield              uint32 `json:"bitfield"`
	Token                 uint32 `json:"token"`
}

type MetadataUsageList struct {
	Start uint32 `json:"start"`
	Count uint32 `json:"count"`
}

type MetadataUsagePair struct {
	DestinationIndex   uint32 `json:"destination_index"`
	EncodedSourceIndex uint32 `json:"encoded_source_index"`
}

var (
	stringLiteralLayout = layoutOf(reflect.TypeOf(StringLiteralInfo{}))
	imageLayout         = layoutOf(reflect.TypeOf(ImageDefinition{}))
	assemblyLayout      = layoutOf(reflect.TypeOf(AssemblyDefinition{}))
	typeDefLayout       = layoutOf(reflect.TypeOf(TypeDefinition{}))
	usageListLayout     = layoutOf(reflect.TypeOf(MetadataUsageList{}))
	usagePairLayout     = layoutOf(reflect.TypeOf(MetadataUsagePair{}))
)
