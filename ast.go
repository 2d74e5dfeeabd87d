package linkml

// SchemaDocument is the raw, unresolved representation of a single parsed
// schema source document: exactly what parser.go decodes from YAML/JSON,
// before imports are followed or slots are materialized (see view.go and
// materialize.go for the resolved forms).
type SchemaDocument struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string            `yaml:"version,omitempty" json:"version,omitempty"`
	Prefixes    map[string]string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
	DefaultPrefix string          `yaml:"default_prefix,omitempty" json:"default_prefix,omitempty"`
	Imports     []string          `yaml:"imports,omitempty" json:"imports,omitempty"`

	DefaultRange string `yaml:"default_range,omitempty" json:"default_range,omitempty"`

	Classes map[string]*ClassDef `yaml:"classes,omitempty" json:"classes,omitempty"`
	Slots   map[string]*SlotDef  `yaml:"slots,omitempty" json:"slots,omitempty"`
	Types   map[string]*TypeDef  `yaml:"types,omitempty" json:"types,omitempty"`
	Enums   map[string]*EnumDef  `yaml:"enums,omitempty" json:"enums,omitempty"`

	// sourcePath is the path this document was loaded from, used to build
	// import chains for ImportError and as a cache key component.
	sourcePath string
}

// ClassDef is a single `classes.<name>` entry.
type ClassDef struct {
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	IsA         string   `yaml:"is_a,omitempty" json:"is_a,omitempty"`
	Mixins      []string `yaml:"mixins,omitempty" json:"mixins,omitempty"`
	Abstract    bool     `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Mixin       bool     `yaml:"mixin,omitempty" json:"mixin,omitempty"`

	Slots       []string                `yaml:"slots,omitempty" json:"slots,omitempty"`
	SlotUsage   map[string]*SlotDef     `yaml:"slot_usage,omitempty" json:"slot_usage,omitempty"`
	Attributes  map[string]*SlotDef     `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	TreeRoot       bool               `yaml:"tree_root,omitempty" json:"tree_root,omitempty"`
	UniqueKeys     map[string]*UniqueKeyDef `yaml:"unique_keys,omitempty" json:"unique_keys,omitempty"`
	Rules          []*RuleDef               `yaml:"rules,omitempty" json:"rules,omitempty"`

	// className is filled in by the loader/resolver during indexing so a
	// ClassDef can be passed around without its enclosing map key.
	className string
}

// SlotDef is a single `slots.<name>` entry, a class-level attribute, or a
// slot_usage refinement — all three share this shape per LinkML's slot model.
type SlotDef struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Range       string `yaml:"range,omitempty" json:"range,omitempty"`

	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
	Multivalued bool `yaml:"multivalued,omitempty" json:"multivalued,omitempty"`
	Identifier  bool `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	Key         bool `yaml:"key,omitempty" json:"key,omitempty"`

	MinimumValue *Rat `yaml:"minimum_value,omitempty" json:"minimum_value,omitempty"`
	MaximumValue *Rat `yaml:"maximum_value,omitempty" json:"maximum_value,omitempty"`

	Pattern           string             `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	StructuredPattern *StructuredPattern `yaml:"structured_pattern,omitempty" json:"structured_pattern,omitempty"`

	IfAbsent string `yaml:"ifabsent,omitempty" json:"ifabsent,omitempty"`

	// EqualsExpression is a sandboxed boolean expression (pkg/expr) evaluated
	// against the enclosing instance; the slot's own value is exposed to it
	// under its own name alongside every sibling slot.
	EqualsExpression string `yaml:"equals_expression,omitempty" json:"equals_expression,omitempty"`

	AnyOf        []*SlotDef `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	AllOf        []*SlotDef `yaml:"all_of,omitempty" json:"all_of,omitempty"`
	ExactlyOneOf []*SlotDef `yaml:"exactly_one_of,omitempty" json:"exactly_one_of,omitempty"`
	NoneOf       []*SlotDef `yaml:"none_of,omitempty" json:"none_of,omitempty"`

	// slotName is filled in during indexing, mirroring ClassDef.className.
	slotName string

	// fromSchema records which schema document defined this slot, used by
	// materialize.go to build provenance entries.
	fromSchema string
}

// UniqueKeyDef is a single `classes.<name>.unique_keys.<name>` entry.
type UniqueKeyDef struct {
	UniqueKeySlots []string `yaml:"unique_key_slots" json:"unique_key_slots"`
}

// RuleDef is a single precondition/postcondition pair under
// `classes.<name>.rules`.
type RuleDef struct {
	Description    string          `yaml:"description,omitempty" json:"description,omitempty"`
	Preconditions  *RuleConditions `yaml:"preconditions,omitempty" json:"preconditions,omitempty"`
	Postconditions *RuleConditions `yaml:"postconditions,omitempty" json:"postconditions,omitempty"`
}

// RuleConditions is the slot_conditions/expression body of a rule's
// preconditions or postconditions block.
type RuleConditions struct {
	SlotConditions map[string]*SlotDef `yaml:"slot_conditions,omitempty" json:"slot_conditions,omitempty"`
}

// TypeDef is a single `types.<name>` entry.
type TypeDef struct {
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	TypeOf       string `yaml:"typeof,omitempty" json:"typeof,omitempty"`
	BaseType     string `yaml:"base,omitempty" json:"base,omitempty"`
	Pattern      string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MinimumValue *Rat   `yaml:"minimum_value,omitempty" json:"minimum_value,omitempty"`
	MaximumValue *Rat   `yaml:"maximum_value,omitempty" json:"maximum_value,omitempty"`
}

// EnumDef is a single `enums.<name>` entry.
type EnumDef struct {
	Description        string                      `yaml:"description,omitempty" json:"description,omitempty"`
	PermissibleValues   map[string]*PermissibleValue `yaml:"permissible_values,omitempty" json:"permissible_values,omitempty"`

	// ReachableFrom/InstanceBacked cover dynamically-sourced enums whose
	// value set is computed from a referenced resource rather than listed
	// literally (spec.md §4.4.1's instance-backed enum support).
	InstanceBacked *InstanceBacked `yaml:"instance_backed,omitempty" json:"instance_backed,omitempty"`
}

// InstanceBacked names the slot a permissible value is matched against when
// an enum's value set is drawn from a running set of class instances
// instead of a static permissible_values list.
type InstanceBacked struct {
	Class     string `yaml:"class" json:"class"`
	MatchSlot string `yaml:"match_slot" json:"match_slot"`
}

// PermissibleValue is one literal member of an EnumDef's value set.
type PermissibleValue struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Meaning     string `yaml:"meaning,omitempty" json:"meaning,omitempty"`
}

// StructuredPattern is a named-capture pattern composed from a syntax string
// plus the schema's prefix map, interpolated by pkg/pattern at compile time.
type StructuredPattern struct {
	Syntax             string `yaml:"syntax" json:"syntax"`
	InterpolatePartial bool   `yaml:"interpolated,omitempty" json:"interpolated,omitempty"`
}

