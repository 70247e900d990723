package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plain-text password of every Fixtures user
const FixturePassword = "Fixture#2024"

var courses = []string{"Data Analytics", "Cloud Engineering", "Cybersecurity", "Product Design", "Software Engineering"}

// Fixtures builds realistic users and transactions from a seeded faker so a
// failing test can be replayed with the same data.
type Fixtures struct {
	faker *gofakeit.Faker
	seq   atomic.Uint64
	hash  string
}

// NewFixtures creates a fixture builder. A seed of 0 picks a random seed.
func NewFixtures(seed uint64) *Fixtures {
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &Fixtures{faker: gofakeit.New(seed), hash: string(hash)}
}

// Faker exposes the underlying generator.
func (f *Fixtures) Faker() *gofakeit.Faker {
	return f.faker
}

// Username returns a unique username that satisfies the username rules.
func (f *Fixtures) Username() string {
	base := strings.ToLower(f.faker.Username())
	base = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, base)
	if len(base) < 3 {
		base = "user"
	}
	return fmt.Sprintf("%s_%d", base, f.seq.Add(1))
}

// Email returns a unique lower-case address.
func (f *Fixtures) Email(username string) string {
	return fmt.Sprintf("%s@%s", username, strings.ToLower(f.faker.DomainName()))
}

// Password returns a random password meeting the password policy.
func (f *Fixtures) Password() string {
	return "Aa1!" + f.faker.LetterN(8)
}

// Course returns a course a student may enrol in.
func (f *Fixtures) Course() string {
	return f.faker.RandomString(courses)
}

// SignUp returns sign-up parameters for role. Students get a course.
func (f *Fixtures) SignUp(role identity.Role) identity.NewUserParams {
	username := f.Username()
	p := identity.NewUserParams{
		FullName:           f.faker.Name(),
		PhoneNumber:        f.faker.Phone(),
		CountryOfResidence: f.faker.Country(),
		Username:           username,
		Email:              f.Email(username),
		Password:           f.Password(),
		Role:               role,
	}
	if role == identity.RoleStudent {
		p.Course = f.Course()
	}
	return p
}

// User builds a verified user with FixturePassword. The hash is computed at
// the lowest bcrypt cost so fixtures stay cheap.
func (f *Fixtures) User(role identity.Role) *identity.User {
	p := f.SignUp(role)
	u := &identity.User{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		FullName:           p.FullName,
		PhoneNumber:        p.PhoneNumber,
		CountryOfResidence: p.CountryOfResidence,
		Username:           p.Username,
		Email:              p.Email,
		PasswordHash:       f.hash,
		Course:             p.Course,
		Role:               role,
		IsVerified:         true,
		Commissions:        identity.ZeroCommissionsSummary(),
	}
	if role == identity.RoleAffiliate {
		u.ReferralCode = fmt.Sprintf("%08x", f.seq.Add(1)+uint64(f.faker.Uint32()))
	}
	return u
}

// ReferredStudent builds a verified student referred by referrer.
func (f *Fixtures) ReferredStudent(referrer *identity.User) *identity.User {
	u := f.User(identity.RoleStudent)
	ref := referrer.ID
	u.ReferredBy = &ref
	return u
}

// Amount returns a positive amount with two decimal places.
func (f *Fixtures) Amount() decimal.Decimal {
	return decimal.NewFromFloat(f.faker.Price(10, 5000)).Round(2)
}

// PendingTransaction builds a pending transaction for studentID.
func (f *Fixtures) PendingTransaction(studentID uuid.UUID) *finance.Transaction {
	tx, err := finance.NewTransaction(studentID, f.Amount(), finance.Receipt{
		URL:      f.faker.URL() + "/receipt.png",
		PublicID: "receipts/" + uuid.NewString() + ".png",
	})
	if err != nil {
		panic(err)
	}
	tx.ClearDomainEvents()
	return tx
}
