/*
Package classifier implements the text guards of the ordering dialog.

Classification is deliberately shallow: every guard lower-cases the inbound
text and runs a regular expression or keyword search against a closed
vocabulary. Guards never fail; any string, including an empty or malformed
one, yields a definite answer.

Size, payment and confirmation guards search for a substring, so "хочу
большую пиццу" selects a large pizza. The cancel guard requires the whole
(trimmed) message to equal a cancel word, so "не хочу выход" does not abort
the dialog.

A Vocabulary is static configuration: build it once with Default or
LoadVocabulary and share the resulting Classifier between all conversations.
*/
package classifier
