package classfile

const (
	Magic = 0xCAFEBABE
)

type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

func (f AccessFlags) IsInterface() bool  { return f.Has(AccInterface) }
func (f AccessFlags) IsAbstract() bool   { return f.Has(AccAbstract) }
func (f AccessFlags) IsNative() bool     { return f.Has(AccNative) }
func (f AccessFlags) IsStatic() bool     { return f.Has(AccStatic) }
func (f AccessFlags) IsSynthetic() bool  { return f.Has(AccSynthetic) }
func (f AccessFlags) IsAnnotation() bool { return f.Has(AccAnnotation) }
func (f AccessFlags) IsEnum() bool       { return f.Has(AccEnum) }
func (f AccessFlags) IsModule() bool     { return f.Has(AccModule) }

type ConstantTag uint8

const (
	ConstantUtf8               ConstantTag = 1
	ConstantInteger            ConstantTag = 3
	ConstantFloat              ConstantTag = 4
	ConstantLong               ConstantTag = 5
	ConstantDouble             ConstantTag = 6
	ConstantClass              ConstantTag = 7
	ConstantString             ConstantTag = 8
	ConstantFieldref           ConstantTag = 9
	ConstantMethodref          ConstantTag = 10
	ConstantInterfaceMethodref ConstantTag = 11
	ConstantNameAndType        ConstantTag = 12
	ConstantMethodHandle       ConstantTag = 15
	ConstantMethodType         ConstantTag = 16
	ConstantDynamic            ConstantTag = 17
	ConstantInvokeDynamic      ConstantTag = 18
	ConstantModule             ConstantTag = 19
	ConstantPackage            ConstantTag = 20
)

type MethodHandleKind uint8

const (
	RefGetField         MethodHandleKind = 1
	RefGetStatic        MethodHandleKind = 2
	RefPutField         MethodHandleKind = 3
	RefPutStatic        MethodHandleKind = 4
	RefInvokeVirtual    MethodHandleKind = 5
	RefInvokeStatic     MethodHandleKind = 6
	RefInvokeSpecial    MethodHandleKind = 7
	RefNewInvokeSpecial MethodHandleKind = 8
	RefInvokeInterface  MethodHandleKind = 9
)

var methodHandleKindNames = [...]string{
	RefGetField:         "getfield",
	RefGetStatic:        "getstatic",
	RefPutField:         "putfield",
	RefPutStatic:        "putstatic",
	RefInvokeVirtual:    "invokevirtual",
	RefInvokeStatic:     "invokestatic",
	RefInvokeSpecial:    "invokespecial",
	RefNewInvokeSpecial: "newinvokespecial",
	RefInvokeInterface:  "invokeinterface",
}

func (k MethodHandleKind) String() string {
	if int(k) < len(methodHandleKindNames) && methodHandleKindNames[k] != "" {
		return methodHandleKindNames[k]
	}
	return "unknown"
}
