package parser

import "reflect"

// ExpectedSanity is the header magic of a valid global-metadata.dat. On disk
// it reads AF 1B B1 FA.
const ExpectedSanity uint32 = 0xFAB11BAF

// Header is the fixed preamble of the metadata file. Apart from Sanity and
// Version, fields come in pairs: an absolute byte offset into the file and
// the byte size of the section starting there.
//
// Field order is the on-disk order.
type Header struct {
	Sanity                                     uint32 `json:"sanity"`
	Version                                    int32  `json:"version"`
	StringLiteralOffset                        int32  `json:"string_literal_offset"`
	StringLiteralSize                          int32  `json:"string_literal_size"`
	StringLiteralDataOffset                    int32  `json:"string_literal_data_offset"`
	StringLiteralDataSize                      int32  `json:"string_literal_data_size"`
	StringOffset                               int32  `json:"string_offset"`
	StringSize                                 int32  `json:"string_size"`
	EventsOffset                               int32  `json:"events_offset"`
	EventsSize                                 int32  `json:"events_size"`
	PropertiesOffset                           int32  `json:"properties_offset"`
	PropertiesSize                             int32  `json:"properties_size"`
	MethodsOffset                              int32  `json:"methods_offset"`
	MethodsSize                                int32  `json:"methods_size"`
	ParameterDefaultValuesOffset               int32  `json:"parameter_default_values_offset"`
	ParameterDefaultValuesSize                 int32  `json:"parameter_default_values_size"`
	FieldDefaultValuesOffset                   int32  `json:"field_default_values_offset"`
	FieldDefaultValuesSize                     int32  `json:"field_default_values_size"`
	FieldAndParameterDefaultValueDataOffset    int32  `json:"field_and_parameter_default_value_data_offset"`
	FieldAndParameterDefaultValueDataSize      int32  `json:"field_and_parameter_default_value_data_size"`
	FieldMarshaledSizesOffset                  int32  `json:"field_marshaled_sizes_offset"`
	FieldMarshaledSizesSize                    int32  `json:"field_marshaled_sizes_size"`
	ParametersOffset                           int32  `json:"parameters_offset"`
	ParametersSize                             int32  `json:"parameters_size"`
	FieldsOffset                               int32  `json:"fields_offset"`
	FieldsSize                                 int32  `json:"fields_size"`
	GenericParametersOffset                    int32  `json:"generic_parameters_offset"`
	GenericParametersSize                      int32  `json:"generic_parameters_size"`
	GenericParameterConstraintsOffset          int32  `json:"generic_parameter_constraints_offset"`
	GenericParameterConstraintsSize            int32  `json:"generic_parameter_constraints_size"`
	GenericContainersOffset                    int32  `json:"generic_containers_offset"`
	GenericContainersSize                      int32  `json:"generic_containers_size"`
	NestedTypesOffset                          int32  `json:"nested_types_offset"`
	NestedTypesSize                            int32  `json:"nested_types_size"`
	InterfacesOffset                           int32  `json:"interfaces_offset"`
	InterfacesSize                             int32  `json:"interfaces_size"`
	VTableMethodsOffset                        int32  `json:"vtable_methods_offset"`
	VTableMethodsSize                          int32  `json:"vtable_methods_size"`
	InterfaceOffsetsOffset                     int32  `json:"interface_offsets_offset"`
	InterfaceOffsetsSize                       int32  `json:"interface_offsets_size"`
	TypeDefinitionsOffset                      int32  `json:"type_definitions_offset"`
	TypeDefinitionsSize                        int32  `json:"type_definitions_size"`
	RGCTXEntriesOffset                         int32  `json:"rgctx_entries_offset"`
	RGCTXEntriesSize                           int32  `json:"rgctx_entries_size"`
	ImagesOffset                               int32  `json:"images_offset"`
	ImagesSize                                 int32  `json:"images_size"`
	AssembliesOffset                           int32  `json:"assemblies_offset"`
	AssembliesSize                             int32  `json:"assemblies_size"`
	MetadataUsageListsOffset                   int32  `json:"metadata_usage_lists_offset"`
	MetadataUsageListsSize                     int32  `json:"metadata_usage_lists_size"`
	MetadataUsagePairsOffset                   int32  `json:"metadata_usage_pairs_offset"`
	MetadataUsagePairsSize                     int32  `json:"metadata_usage_pairs_size"`
	FieldRefsOffset                            int32  `json:"field_refs_offset"`
	FieldRefsSize                              int32  `json:"field_refs_size"`
	ReferencedAssembliesOffset                 int32  `json:"referenced_assemblies_offset"`
	ReferencedAssembliesSize                   int32  `json:"referenced_assemblies_size"`
	AttributesInfoOffset                       int32  `json:"attributes_info_offset"`
	AttributesInfoSize                         int32  `json:"attributes_info_size"`
	AttributeTypesOffset                       int32  `json:"attribute_types_offset"`
	AttributeTypesSize                         int32  `json:"attribute_types_size"`
	UnresolvedVirtualCallParameterTypesOffset  int32  `json:"unresolved_virtual_call_parameter_types_offset"`
	UnresolvedVirtualCallParameterTypesSize    int32  `json:"unresolved_virtual_call_parameter_types_size"`
	UnresolvedVirtualCallParameterRangesOffset int32  `json:"unresolved_virtual_call_parameter_ranges_offset"`
	UnresolvedVirtualCallParameterRangesSize   int32  `json:"unresolved_virtual_call_parameter_ranges_size"`
	WindowsRuntimeTypeNamesOffset              int32  `json:"windows_runtime_type_names_offset"`
	WindowsRuntimeTypeNamesSize                int32  `json:"windows_runtime_type_names_size"`
	ExportedTypeDefinitionsOffset              int32  `json:"exported_type_definitions_offset"`
	ExportedTypeDefinitionsSize                int32  `json:"exported_type_definitions_size"`
}

var headerLayout = layoutOf(reflect.TypeOf(Header{}))

// HeaderSize is the encoded size of Header in bytes.
var HeaderSize = headerLayout.size
