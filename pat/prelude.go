package pat

// Prelude is the ECMAScript 5.1 helper library that compiled
// expressions call.  An embedder evaluates Prelude once in the scope
// that will run Translate output.
//
// Records cross into ECMAScript as plain objects carrying a "$type"
// property (see EncodeValue), which is why _isMap refuses objects
// with one and _getattr hides it.
//
// The host expression language has a single number type, so the
// "int" test accepts any integral number: a compiled int guard can't
// tell 42 from 42.0.  The "float" test accepts any number at all,
// which is exactly the matcher's widening rule.
const Prelude = `
var _nope = {};

function _isSeq(x) {
	return Array.isArray(x);
}

function _isMap(x) {
	return x !== null && typeof x === "object" && !Array.isArray(x) &&
		!Object.prototype.hasOwnProperty.call(x, "$type");
}

function _hasKey(o, k) {
	return Object.prototype.hasOwnProperty.call(o, k);
}

function _getattr(o, n) {
	if (o === null || typeof o !== "object" || Array.isArray(o) || n === "$type") {
		return _nope;
	}
	return Object.prototype.hasOwnProperty.call(o, n) ? o[n] : _nope;
}

function _is(x, t) {
	switch (t) {
	case "null":
		return x === null;
	case "bool":
		return typeof x === "boolean";
	case "int":
		return typeof x === "number" && isFinite(x) && Math.floor(x) === x;
	case "float":
		return typeof x === "number";
	case "str":
		return typeof x === "string";
	case "list":
		return Array.isArray(x);
	case "map":
		return _isMap(x);
	default:
		return x !== null && typeof x === "object" && x.$type === t;
	}
}
`
