/*
Package validation checks computed payloads against the constraints declared in
entity metadata before a change set is accepted.

Two kinds of constraints are enforced:

  - Required: on insert the property must be present and not blank (nil or an
    empty string, slice or map); on update a present value must not be blank.
    Required many-to-one properties must hold an assigned reference.
  - Rules: boolean expressions evaluated for every non-nil payload value of the
    property. The variables value, payload and entity are bound. Rules use
    expr-lang by default; set Engine to "cel" for CEL.

Example metadata:

	- name: age
	  kind: scalar
	  rules:
	    - name: adult
	      expr: value >= 18
	    - name: sane
	      expr: value < 150
	      engine: cel

Compiled programs are cached per validator, so a validator should be shared by
every computation in a process.
*/
package validation
