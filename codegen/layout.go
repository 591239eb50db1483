package codegen

import (
	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/op"
)

const (
	javaLangEnum     = "java/lang/Enum"
	javaLangString   = "java/lang/String"
	stringDesc       = "Ljava/lang/String;"
	illegalArgument  = "java/lang/IllegalArgumentException"
	stringBuilder    = "java/lang/StringBuilder"
	stringBuilderRet = ")Ljava/lang/StringBuilder;"
	valuesField      = "$VALUES"
	valueField       = "value"
)

// layout emits the fields and methods of one enum class.
type layout struct {
	w         *classfile.ClassWriter
	enum      *Enum
	name      string // binary name
	desc      string // field descriptor of the class
	arrayDesc string // descriptor of an array of the class
	valueDesc string // "I" or "Ljava/lang/String;"
}

func newLayout(w *classfile.ClassWriter, name string, enum *Enum) *layout {
	l := &layout{
		w:         w,
		enum:      enum,
		name:      name,
		desc:      "L" + name + ";",
		arrayDesc: "[L" + name + ";",
		valueDesc: "I",
	}
	if enum.Kind == String {
		l.valueDesc = stringDesc
	}
	return l
}

func (l *layout) build() error {
	for _, m := range l.enum.Members {
		l.w.AddField(classfile.AccPublic|classfile.AccStatic|classfile.AccFinal|classfile.AccEnum,
			m.JavaName, l.desc)
	}
	l.w.AddField(classfile.AccPrivate|classfile.AccFinal, valueField, l.valueDesc)
	l.w.AddField(classfile.AccPrivate|classfile.AccStatic|classfile.AccFinal|classfile.AccSynthetic,
		valuesField, l.arrayDesc)

	steps := []func() error{
		l.constructor,
		l.staticInit,
		l.values,
		l.valueOf,
		l.getValue,
		l.fromValue,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (l *layout) ctorDesc() string {
	return "(Ljava/lang/String;I" + l.valueDesc + ")V"
}

func (l *layout) loadValue(code *classfile.Code, local int) {
	if l.enum.Kind == String {
		code.ALoad(local)
	} else {
		code.ILoad(local)
	}
}

// constructor: private Color(String name, int ordinal, int value)
func (l *layout) constructor() error {
	code := l.w.NewCode()
	code.ALoad(0)
	code.ALoad(1)
	code.ILoad(2)
	code.InvokeSpecial(javaLangEnum, "<init>", "(Ljava/lang/String;I)V")
	code.ALoad(0)
	l.loadValue(code, 3)
	code.PutField(l.name, valueField, l.valueDesc)
	code.Emit(op.Return)
	code.SetMaxs(3, 4)
	return l.w.AddMethod(classfile.AccPrivate, "<init>", l.ctorDesc(), code)
}

// staticInit creates every constant in declaration order and fills $VALUES.
func (l *layout) staticInit() error {
	code := l.w.NewCode()
	for _, m := range l.enum.Members {
		code.New(l.name)
		code.Emit(op.Dup)
		code.PushString(m.JavaName)
		code.PushInt(int32(m.Ordinal))
		if l.enum.Kind == String {
			code.PushString(m.Str)
		} else {
			code.PushInt(m.Int)
		}
		code.InvokeSpecial(l.name, "<init>", l.ctorDesc())
		code.PutStatic(l.name, m.JavaName, l.desc)
	}
	code.PushInt(int32(len(l.enum.Members)))
	code.ANewArray(l.name)
	for _, m := range l.enum.Members {
		code.Emit(op.Dup)
		code.PushInt(int32(m.Ordinal))
		code.GetStatic(l.name, m.JavaName, l.desc)
		code.Emit(op.AAStore)
	}
	code.PutStatic(l.name, valuesField, l.arrayDesc)
	code.Emit(op.Return)
	code.SetMaxs(5, 0)
	return l.w.AddMethod(classfile.AccStatic, "<clinit>", "()V", code)
}

// values returns a copy of $VALUES.
func (l *layout) values() error {
	code := l.w.NewCode()
	code.GetStatic(l.name, valuesField, l.arrayDesc)
	code.InvokeVirtual(l.arrayDesc, "clone", "()Ljava/lang/Object;")
	code.CheckCast(l.arrayDesc)
	code.Emit(op.AReturn)
	code.SetMaxs(1, 0)
	return l.w.AddMethod(classfile.AccPublic|classfile.AccStatic, "values", "()"+l.arrayDesc, code)
}

// valueOf delegates to Enum.valueOf(Class, String).
func (l *layout) valueOf() error {
	code := l.w.NewCode()
	code.PushClass(l.name)
	code.ALoad(0)
	code.InvokeStatic(javaLangEnum, "valueOf", "(Ljava/lang/Class;Ljava/lang/String;)Ljava/lang/Enum;")
	code.CheckCast(l.name)
	code.Emit(op.AReturn)
	code.SetMaxs(2, 1)
	return l.w.AddMethod(classfile.AccPublic|classfile.AccStatic, "valueOf", "(Ljava/lang/String;)"+l.desc, code)
}

func (l *layout) getValue() error {
	code := l.w.NewCode()
	code.ALoad(0)
	code.GetField(l.name, valueField, l.valueDesc)
	if l.enum.Kind == String {
		code.Emit(op.AReturn)
	} else {
		code.Emit(op.IReturn)
	}
	code.SetMaxs(1, 1)
	return l.w.AddMethod(classfile.AccPublic, "getValue", "()"+l.valueDesc, code)
}

// fromValue scans values() for a member with the given value:
//
//	Color[] arr = values();
//	int n = arr.length;
//	for (int i = 0; i < n; i++) {
//		Color e = arr[i];
//		if (e.getValue() == value) return e;
//	}
//	throw new IllegalArgumentException("Invalid value: " + value);
func (l *layout) fromValue() error {
	const (
		localValue = iota
		localArray
		localLength
		localIndex
		localElem
	)
	code := l.w.NewCode()
	valueType := classfile.IntegerType
	if l.enum.Kind == String {
		valueType = code.ObjectType(javaLangString)
	}
	loopLocals := []classfile.VerificationType{
		valueType,
		code.ObjectType(l.arrayDesc),
		classfile.IntegerType,
		classfile.IntegerType,
	}
	bodyLocals := append(append([]classfile.VerificationType{}, loopLocals...), code.ObjectType(l.name))

	loop, next, end := code.NewLabel(), code.NewLabel(), code.NewLabel()

	code.InvokeStatic(l.name, "values", "()"+l.arrayDesc)
	code.AStore(localArray)
	code.ALoad(localArray)
	code.Emit(op.ArrayLength)
	code.IStore(localLength)
	code.PushInt(0)
	code.IStore(localIndex)

	code.Mark(loop)
	code.Frame(loop, loopLocals, nil)
	code.ILoad(localIndex)
	code.ILoad(localLength)
	code.Jump(op.IfICmpGe, end)
	code.ALoad(localArray)
	code.ILoad(localIndex)
	code.Emit(op.AALoad)
	code.AStore(localElem)
	code.ALoad(localElem)
	code.InvokeVirtual(l.name, "getValue", "()"+l.valueDesc)
	l.loadValue(code, localValue)
	if l.enum.Kind == String {
		code.InvokeVirtual(javaLangString, "equals", "(Ljava/lang/Object;)Z")
		code.Jump(op.IfEq, next)
	} else {
		code.Jump(op.IfICmpNe, next)
	}
	code.ALoad(localElem)
	code.Emit(op.AReturn)

	code.Mark(next)
	code.Frame(next, bodyLocals, nil)
	code.IInc(localIndex, 1)
	code.Jump(op.Goto, loop)

	code.Mark(end)
	code.Frame(end, loopLocals, nil)
	code.New(illegalArgument)
	code.Emit(op.Dup)
	code.New(stringBuilder)
	code.Emit(op.Dup)
	code.InvokeSpecial(stringBuilder, "<init>", "()V")
	code.PushString("Invalid value: ")
	code.InvokeVirtual(stringBuilder, "append", "("+stringDesc+stringBuilderRet)
	l.loadValue(code, localValue)
	code.InvokeVirtual(stringBuilder, "append", "("+l.valueDesc+stringBuilderRet)
	code.InvokeVirtual(stringBuilder, "toString", "()"+stringDesc)
	code.InvokeSpecial(illegalArgument, "<init>", "("+stringDesc+")V")
	code.Emit(op.AThrow)
	code.SetMaxs(4, 5)

	return l.w.AddMethod(classfile.AccPublic|classfile.AccStatic, "fromValue", "("+l.valueDesc+")"+l.desc, code)
}
